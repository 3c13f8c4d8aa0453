package jobs

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"infinite-experiment/wayfinder/internal/logging"
	"infinite-experiment/wayfinder/internal/metrics"
)

// InitializeJobs starts all background jobs and returns the sweep job so
// callers can inspect it.
func InitializeJobs(
	ctx context.Context,
	purger CachePurger,
	retentionDays int,
	sweepInterval time.Duration,
	metricsReg *metrics.MetricsRegistry,
) *CacheSweepJob {
	var deleted prometheus.Counter
	if metricsReg != nil {
		deleted = metricsReg.CacheSweepDeletedTotal
	}
	sweep := NewCacheSweepJob(purger, retentionDays, deleted)

	if sweepInterval > 0 {
		go sweep.RunScheduled(ctx, sweepInterval)
		logging.Info("Durable cache sweep scheduled", "interval", sweepInterval.String(), "retention_days", retentionDays)
	}

	return sweep
}
