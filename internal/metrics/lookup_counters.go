package metrics

import (
	"sync"
	"sync/atomic"
)

// LookupCounters is the resolver's metrics sink. Counts are kept in-process
// for GetStats and mirrored to Prometheus when a registry is attached.
type LookupCounters struct {
	counts sync.Map // map[string]*atomic.Int64
	reg    *MetricsRegistry
}

// NewLookupCounters creates a sink; reg may be nil.
func NewLookupCounters(reg *MetricsRegistry) *LookupCounters {
	return &LookupCounters{reg: reg}
}

func (c *LookupCounters) Incr(name string) {
	v, _ := c.counts.LoadOrStore(name, new(atomic.Int64))
	v.(*atomic.Int64).Add(1)
	if c.reg != nil {
		c.reg.LookupEventsTotal.WithLabelValues(name).Inc()
	}
}

func (c *LookupCounters) Count(name string) int64 {
	v, ok := c.counts.Load(name)
	if !ok {
		return 0
	}
	return v.(*atomic.Int64).Load()
}

// ObserveCacheSize publishes the entry count of a cache tier
func (c *LookupCounters) ObserveCacheSize(cache string, n int) {
	if c.reg != nil {
		c.reg.CacheEntries.WithLabelValues(cache).Set(float64(n))
	}
}
