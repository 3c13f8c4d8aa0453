package resolver

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

const DefaultMemoryCacheSize = 1000

// memoryCache is the in-process tier. Reads refresh recency, so eviction is
// strict least-recently-used.
type memoryCache struct {
	lru      *lru.Cache[string, LookupResult]
	capacity int
}

func newMemoryCache(capacity int) (*memoryCache, error) {
	if capacity <= 0 {
		capacity = DefaultMemoryCacheSize
	}
	c, err := lru.New[string, LookupResult](capacity)
	if err != nil {
		return nil, err
	}
	return &memoryCache{lru: c, capacity: capacity}, nil
}

// Get returns a copy so callers cannot mutate the cached alternatives
func (m *memoryCache) Get(key string) (*LookupResult, bool) {
	v, ok := m.lru.Get(key)
	if !ok {
		return nil, false
	}
	return v.clone(), true
}

func (m *memoryCache) Set(key string, res *LookupResult) {
	m.lru.Add(key, *res.clone())
}

func (m *memoryCache) Len() int { return m.lru.Len() }

func (m *memoryCache) Purge() { m.lru.Purge() }
