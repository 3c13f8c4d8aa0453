package workers

import (
	"context"
	"time"

	"infinite-experiment/wayfinder/internal/logging"
)

// IndexBuilder is implemented by *repositories.LocationRepository.
type IndexBuilder interface {
	WarmIndex(ctx context.Context) (int, error)
}

// IndexWarmer rebuilds the fuzzy search index ahead of its expiry so lookups
// never pay for the rebuild.
type IndexWarmer struct {
	builder IndexBuilder
	timeout time.Duration
}

func NewIndexWarmer(builder IndexBuilder, timeout time.Duration) *IndexWarmer {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &IndexWarmer{builder: builder, timeout: timeout}
}

// Warm builds the index once and returns the number of indexed entries
func (w *IndexWarmer) Warm(ctx context.Context) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	start := time.Now()
	n, err := w.builder.WarmIndex(ctx)
	if err != nil {
		logging.Warn("Search index warm-up failed", "error", err)
		return 0, err
	}
	logging.Debug("Search index warmed", "entries", n, "duration_ms", time.Since(start).Milliseconds())
	return n, nil
}

// Start warms immediately and then every interval until ctx is done
func (w *IndexWarmer) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	w.Warm(ctx)

	for {
		select {
		case <-ticker.C:
			w.Warm(ctx)
		case <-ctx.Done():
			return
		}
	}
}
