package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"infinite-experiment/wayfinder/internal/logging"
)

// CachePurger is implemented by *resolver.LocationResolver.
type CachePurger interface {
	ClearDBCache(ctx context.Context, olderThanDays int) (int64, error)
}

// SweepStatus describes the most recent sweep
type SweepStatus struct {
	LastRun     time.Time `json:"lastRun"`
	LastRemoved int64     `json:"lastRemoved"`
	LastError   string    `json:"lastError,omitempty"`
	TotalRuns   int       `json:"totalRuns"`
}

// CacheSweepJob purges durable lookup cache entries that have not been
// accessed within the retention window.
type CacheSweepJob struct {
	purger        CachePurger
	retentionDays int
	deleted       prometheus.Counter // optional

	mu     sync.Mutex
	status SweepStatus
	now    func() time.Time
}

// NewCacheSweepJob creates a new sweep job; deleted may be nil
func NewCacheSweepJob(purger CachePurger, retentionDays int, deleted prometheus.Counter) *CacheSweepJob {
	return &CacheSweepJob{
		purger:        purger,
		retentionDays: retentionDays,
		deleted:       deleted,
		now:           time.Now,
	}
}

// Run executes one sweep
func (j *CacheSweepJob) Run(ctx context.Context) (int64, error) {
	start := j.now()
	removed, err := j.purger.ClearDBCache(ctx, j.retentionDays)

	j.mu.Lock()
	j.status.LastRun = start
	j.status.TotalRuns++
	j.status.LastRemoved = removed
	j.status.LastError = ""
	if err != nil {
		j.status.LastError = err.Error()
	}
	j.mu.Unlock()

	if err != nil {
		return 0, fmt.Errorf("durable cache sweep: %w", err)
	}
	if j.deleted != nil {
		j.deleted.Add(float64(removed))
	}

	logging.Info("Durable cache sweep completed",
		"retention_days", j.retentionDays,
		"removed", removed,
		"duration_ms", j.now().Sub(start).Milliseconds(),
	)
	return removed, nil
}

// RunScheduled runs the sweep once immediately and then on every interval
// until ctx is done.
func (j *CacheSweepJob) RunScheduled(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	if _, err := j.Run(ctx); err != nil {
		logging.Warn("Durable cache sweep failed", "phase", "initial", "error", err)
	}

	for {
		select {
		case <-ticker.C:
			if _, err := j.Run(ctx); err != nil {
				logging.Warn("Durable cache sweep failed", "phase", "scheduled", "error", err)
			}
		case <-ctx.Done():
			logging.Info("Shutting down durable cache sweep")
			return
		}
	}
}

// Status returns a copy of the last sweep's outcome
func (j *CacheSweepJob) Status() SweepStatus {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.status
}
