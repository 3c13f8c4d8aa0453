package api

import (
	"context"

	"infinite-experiment/wayfinder/internal/common"
	"infinite-experiment/wayfinder/internal/metrics"
	"infinite-experiment/wayfinder/internal/resolver"
)

// LocationService is the slice of *resolver.LocationResolver the handlers use.
type LocationService interface {
	Lookup(ctx context.Context, query string, opts ...resolver.LookupOption) (*resolver.LookupResult, error)
	ResolveAirportCode(ctx context.Context, query string) (string, error)
	GetAirportInfo(ctx context.Context, query string) *resolver.AirportInfo
	CanResolve(ctx context.Context, query string) bool
	GetStats(ctx context.Context) resolver.Stats
	ClearCache() int
	ClearDBCache(ctx context.Context, olderThanDays int) (int64, error)
}

// DatasetImporter is implemented by *common.LocationLoaderService.
type DatasetImporter interface {
	LoadEmbedded(ctx context.Context) (common.ImportSummary, error)
	LoadFromURL(ctx context.Context, url string) (common.ImportSummary, error)
	GetStats(ctx context.Context) (map[string]int64, error)
}

type Dependencies struct {
	Locations     LocationService
	Importer      DatasetImporter
	Metrics       *metrics.MetricsRegistry // optional
	DatasetURL    string                   // empty means import the embedded dataset
	RetentionDays int                      // default purge window for the durable cache
}

var (
	_ LocationService = (*resolver.LocationResolver)(nil)
	_ DatasetImporter = (*common.LocationLoaderService)(nil)
)
