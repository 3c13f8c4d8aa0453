package workers

import (
	"context"
	"time"
)

type WorkersContainer struct {
	IndexWarmer *IndexWarmer
}

// InitWorkers starts the background workers. The warmer runs at 80% of the
// index TTL so a fresh index is always in place before the old one expires.
func InitWorkers(ctx context.Context, builder IndexBuilder, indexTTL time.Duration) *WorkersContainer {
	warmer := NewIndexWarmer(builder, 0)

	if interval := indexTTL * 4 / 5; interval > 0 {
		go warmer.Start(ctx, interval)
	}

	return &WorkersContainer{
		IndexWarmer: warmer,
	}
}
