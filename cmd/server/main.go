package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"infinite-experiment/wayfinder/internal/api"
	"infinite-experiment/wayfinder/internal/auth"
	"infinite-experiment/wayfinder/internal/common"
	"infinite-experiment/wayfinder/internal/config"
	"infinite-experiment/wayfinder/internal/db"
	"infinite-experiment/wayfinder/internal/db/repositories"
	"infinite-experiment/wayfinder/internal/jobs"
	"infinite-experiment/wayfinder/internal/logging"
	"infinite-experiment/wayfinder/internal/metrics"
	"infinite-experiment/wayfinder/internal/resolver"
	"infinite-experiment/wayfinder/internal/routes"
	"infinite-experiment/wayfinder/internal/workers"
)

const shutdownTimeout = 15 * time.Second

func main() {
	log.SetOutput(os.Stdout)
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Invalid configuration: %v", err)
	}

	// Initialize structured logging
	if err := logging.Init(cfg.AppEnv); err != nil {
		log.Fatalf("❌ Failed to initialize logger: %v", err)
	}
	defer logging.Close()

	logging.Info("Wayfinder starting up",
		"environment", cfg.AppEnv,
		"db_driver", cfg.DB.Driver,
		"durable_backend", cfg.Resolver.DurableBackend,
		"timestamp", time.Now().Format(time.RFC3339),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Connect to DB with GORM
	orm, err := db.InitORM(cfg.DB)
	if err != nil {
		logging.Error("Failed to open database (GORM)", "error", err.Error())
		log.Fatalf("❌ Failed to open database (GORM): %v", err)
	}
	if err := db.Migrate(orm); err != nil {
		log.Fatalf("❌ Failed to migrate database: %v", err)
	}

	// Connect to DB with sqlx
	sqlxDB, err := db.InitSQLX(ctx, cfg.DB, orm)
	if err != nil {
		logging.Error("Failed to connect to database (sqlx)", "error", err.Error())
		log.Fatalf("❌ Failed to connect to database (sqlx): %v", err)
	}
	defer sqlxDB.Close()

	indexTTL := cfg.Resolver.FuzzyIndexTTL
	locationRepo := repositories.NewLocationRepository(orm, common.NewCacheService(indexTTL, indexTTL), indexTTL)
	loader := common.NewLocationLoaderService(locationRepo, nil)

	if cfg.Resolver.SeedOnEmptyDataset {
		seeded, err := loader.SeedIfEmpty(ctx)
		if err != nil {
			log.Fatalf("❌ Failed to seed location dataset: %v", err)
		}
		if seeded {
			logging.Info("Seeded empty location store from the embedded dataset")
		}
	}

	var (
		durable resolver.DurableCache
		rdb     *redis.Client
	)
	switch cfg.Resolver.DurableBackend {
	case "sql":
		durable = repositories.NewLookupCacheRepository(sqlxDB)
	case "redis":
		rdb = common.NewRedisClient(cfg.Redis)
		defer rdb.Close()
		durable = common.NewRedisLookupCache(rdb, "wayfinder")
	}

	// Default registry so /metrics also carries the Go and process collectors
	metricsReg := metrics.NewMetricsRegistry(prometheus.DefaultRegisterer)

	locations, err := resolver.NewLocationResolver(locationRepo, durable, metrics.NewLookupCounters(metricsReg),
		resolver.WithConfig(resolver.Config{
			MemoryCacheSize:   cfg.Resolver.MemoryCacheSize,
			DurableTTL:        cfg.Resolver.DurableTTL,
			DurableTimeout:    cfg.Resolver.DurableTimeout,
			RepositoryTimeout: cfg.Resolver.RepositoryTimeout,
		}),
	)
	if err != nil {
		log.Fatalf("❌ Failed to build location resolver: %v", err)
	}

	var tokens *auth.TokenService
	if cfg.AdminJWTSecret != "" {
		tokens, err = auth.NewTokenService([]byte(cfg.AdminJWTSecret))
		if err != nil {
			log.Fatalf("❌ Failed to init token service: %v", err)
		}
	} else {
		logging.Warn("ADMIN_JWT_SECRET not set, admin API disabled")
	}

	jobs.InitializeJobs(ctx, locations, cfg.Resolver.RetentionDays, cfg.Resolver.SweepInterval, metricsReg)
	workers.InitWorkers(ctx, locationRepo, indexTTL)

	upSince := time.Now()

	router := routes.RegisterRoutes(cfg, routes.RouterDeps{
		API: &api.Dependencies{
			Locations:     locations,
			Importer:      loader,
			Metrics:       metricsReg,
			DatasetURL:    cfg.Resolver.DatasetURL,
			RetentionDays: cfg.Resolver.RetentionDays,
		},
		Gatherer: prometheus.DefaultGatherer,
		SQL:      sqlxDB,
		Redis:    rdb,
		Tokens:   tokens,
	}, upSince)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logging.Info("Server starting", "port", cfg.Port, "environment", cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Error("Server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logging.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.Error("Graceful shutdown failed", "error", err)
	}
}
