// Command location_import replaces the stored location dataset from a JSON
// file, a URL, or the dataset embedded in the binary.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"infinite-experiment/wayfinder/internal/common"
	"infinite-experiment/wayfinder/internal/config"
	"infinite-experiment/wayfinder/internal/db"
	"infinite-experiment/wayfinder/internal/db/repositories"
	"infinite-experiment/wayfinder/internal/logging"
)

func main() {
	file := flag.String("file", "", "path to a locations JSON file")
	url := flag.String("url", "", "URL of a locations JSON file (defaults to AIRPORT_DATASET_URL)")
	embedded := flag.Bool("embedded", false, "import the embedded dataset")
	timeout := flag.Duration("timeout", 2*time.Minute, "overall import timeout")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	if err := logging.Init(cfg.AppEnv); err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer logging.Close()

	if *url == "" && *file == "" && !*embedded {
		*url = cfg.Resolver.DatasetURL
	}
	if *url == "" && *file == "" {
		*embedded = true
	}

	orm, err := db.InitORM(cfg.DB)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	if err := db.Migrate(orm); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	loader := common.NewLocationLoaderService(repositories.NewLocationRepository(orm, nil, 0), nil)

	var summary common.ImportSummary
	switch {
	case *file != "":
		f, err := os.Open(*file)
		if err != nil {
			log.Fatalf("open %s: %v", *file, err)
		}
		defer f.Close()
		summary, err = loader.LoadFromJSON(ctx, f)
		if err != nil {
			log.Fatalf("import %s: %v", *file, err)
		}
	case *url != "":
		summary, err = loader.LoadFromURL(ctx, *url)
		if err != nil {
			log.Fatalf("import %s: %v", *url, err)
		}
	default:
		summary, err = loader.LoadEmbedded(ctx)
		if err != nil {
			log.Fatalf("import embedded dataset: %v", err)
		}
	}

	fmt.Printf("Imported %d metros, %d airports, %d aliases (%d records skipped)\n",
		summary.Metros, summary.Airports, summary.Aliases, summary.Skipped)
}
