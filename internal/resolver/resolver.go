// Package resolver turns free-form location text into a confidence-scored
// airport or metro-area IATA code. Lookups walk the tiers in-process cache,
// durable cache, repository and static fallback table, stopping at the first
// confident hit and populating the faster tiers on the way back.
package resolver

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"strings"
	"time"

	"infinite-experiment/wayfinder/internal/db/repositories"
	"infinite-experiment/wayfinder/internal/logging"
	gormModels "infinite-experiment/wayfinder/internal/models/gorm"
)

type Source string

const (
	SourceDurableCache Source = "durable_cache"
	SourceRepository   Source = "repository"
	SourceFallback     Source = "fallback"
)

// Counter names reported through the MetricsSink
const (
	CounterHitsMemory     = "hits.memory"
	CounterHitsDurable    = "hits.durable"
	CounterHitsRepository = "hits.repository"
	CounterHitsFallback   = "hits.fallback"
	CounterMisses         = "misses"
	CounterErrors         = "errors"
)

const (
	DefaultDurableTTL        = 7 * 24 * time.Hour
	DefaultDurableTimeout    = 250 * time.Millisecond
	DefaultRepositoryTimeout = 2 * time.Second
	DefaultRetentionDays     = 30
)

// Repository is the read side of the location store
type Repository interface {
	FindMetroByCode(ctx context.Context, code string) (*gormModels.MetroArea, error)
	FindAirportByCode(ctx context.Context, code string) (*gormModels.Airport, error)
	FindMetroForAirport(ctx context.Context, airportCode string) (*gormModels.MetroArea, error)
	FindMetrosByName(ctx context.Context, name string) ([]gormModels.MetroArea, error)
	FindAirportsByName(ctx context.Context, name string) ([]gormModels.Airport, error)
	FindByAlias(ctx context.Context, alias string) ([]gormModels.AirportAlias, error)
	FindFuzzy(ctx context.Context, query string, minSimilarity float64, limit int, includeMetros bool) ([]repositories.FuzzyHit, error)
}

// DurableCache persists resolved queries across restarts. Get returns nil, nil
// on a miss.
type DurableCache interface {
	Get(ctx context.Context, key string) (*gormModels.LocationLookupCache, error)
	Upsert(ctx context.Context, entry *gormModels.LocationLookupCache) error
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
	Count(ctx context.Context) (int64, error)
}

type MetricsSink interface {
	Incr(name string)
	Count(name string) int64
}

type cacheSizeObserver interface {
	ObserveCacheSize(cache string, n int)
}

type Alternative struct {
	IATACode   string       `json:"iataCode"`
	Name       string       `json:"name"`
	City       string       `json:"city"`
	Country    string       `json:"country"`
	Type       LocationType `json:"type"`
	Confidence float64      `json:"confidence"`
}

// LookupResult is a resolved location. Confidence is rounded to 2 decimals.
type LookupResult struct {
	Type         LocationType  `json:"type"`
	IATACode     string        `json:"iataCode"`
	Name         string        `json:"name"`
	City         string        `json:"city"`
	Country      string        `json:"country"`
	Confidence   float64       `json:"confidence"`
	Source       Source        `json:"source"`
	Alternatives []Alternative `json:"alternatives,omitempty"`

	// LocationID is the store's row id; empty for fallback results
	LocationID string `json:"-"`
}

func (r LookupResult) clone() *LookupResult {
	out := r
	if r.Alternatives != nil {
		out.Alternatives = append([]Alternative(nil), r.Alternatives...)
	}
	return &out
}

// AirportInfo is the flattened view returned by GetAirportInfo
type AirportInfo struct {
	Code         string       `json:"code"`
	Name         string       `json:"name"`
	City         string       `json:"city"`
	Country      string       `json:"country"`
	Type         LocationType `json:"type"`
	Confidence   float64      `json:"confidence"`
	Alternatives []string     `json:"alternatives,omitempty"`
}

type Stats struct {
	Hits        map[string]int64 `json:"hits"`
	Misses      int64            `json:"misses"`
	Errors      int64            `json:"errors"`
	CacheSize   int              `json:"cacheSize"`
	CacheLimit  int              `json:"cacheLimit"`
	DurableSize int64            `json:"durableSize"` // -1 when unknown
	HitRate     float64          `json:"hitRate"`
}

type LookupOptions struct {
	PreferMetro bool
	Fuzzy       bool
	MaxResults  int
}

type LookupOption func(*LookupOptions)

func WithPreferMetro(prefer bool) LookupOption {
	return func(o *LookupOptions) { o.PreferMetro = prefer }
}

func WithFuzzy(enabled bool) LookupOption {
	return func(o *LookupOptions) { o.Fuzzy = enabled }
}

// WithMaxResults caps alternatives; clamped to [1, 5]
func WithMaxResults(n int) LookupOption {
	return func(o *LookupOptions) { o.MaxResults = n }
}

func buildLookupOptions(opts []LookupOption) LookupOptions {
	o := LookupOptions{PreferMetro: true, Fuzzy: true, MaxResults: MaxAlternatives}
	for _, opt := range opts {
		opt(&o)
	}
	if o.MaxResults < 1 {
		o.MaxResults = 1
	}
	if o.MaxResults > MaxAlternatives {
		o.MaxResults = MaxAlternatives
	}
	return o
}

// Config tunes cache sizes and per-tier deadlines. Zero values take defaults.
type Config struct {
	MemoryCacheSize   int
	DurableTTL        time.Duration
	DurableTimeout    time.Duration
	RepositoryTimeout time.Duration
}

func DefaultConfig() Config {
	return Config{
		MemoryCacheSize:   DefaultMemoryCacheSize,
		DurableTTL:        DefaultDurableTTL,
		DurableTimeout:    DefaultDurableTimeout,
		RepositoryTimeout: DefaultRepositoryTimeout,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.MemoryCacheSize <= 0 {
		c.MemoryCacheSize = d.MemoryCacheSize
	}
	if c.DurableTTL <= 0 {
		c.DurableTTL = d.DurableTTL
	}
	if c.DurableTimeout <= 0 {
		c.DurableTimeout = d.DurableTimeout
	}
	if c.RepositoryTimeout <= 0 {
		c.RepositoryTimeout = d.RepositoryTimeout
	}
	return c
}

type Option func(*LocationResolver)

func WithConfig(cfg Config) Option {
	return func(s *LocationResolver) { s.cfg = cfg }
}

// WithClock overrides time.Now, used for durable TTL and retention math
func WithClock(now func() time.Time) Option {
	return func(s *LocationResolver) { s.now = now }
}

// LocationResolver is safe for concurrent use.
type LocationResolver struct {
	repo    Repository
	durable DurableCache
	sink    MetricsSink
	memory  *memoryCache
	cfg     Config
	now     func() time.Time
}

// NewLocationResolver wires the tiers together. durable may be nil to run
// without a durable cache.
func NewLocationResolver(repo Repository, durable DurableCache, sink MetricsSink, opts ...Option) (*LocationResolver, error) {
	if repo == nil {
		return nil, errors.New("location repository is required")
	}
	if sink == nil {
		return nil, errors.New("metrics sink is required")
	}

	s := &LocationResolver{
		repo:    repo,
		durable: durable,
		sink:    sink,
		cfg:     DefaultConfig(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.cfg = s.cfg.withDefaults()

	mem, err := newMemoryCache(s.cfg.MemoryCacheSize)
	if err != nil {
		return nil, err
	}
	s.memory = mem
	return s, nil
}

// Lookup resolves query to the best matching location.
//
// Errors are *ValidationError for blank input, *NotFoundError when nothing
// matched, and *TransientError when the repository failed and the fallback
// table had no entry.
func (s *LocationResolver) Lookup(ctx context.Context, query string, opts ...LookupOption) (*LookupResult, error) {
	if strings.TrimSpace(query) == "" {
		s.sink.Incr(CounterErrors)
		return nil, &ValidationError{Query: query, Reason: "query must not be empty"}
	}

	o := buildLookupOptions(opts)
	normalized := NormalizeQuery(query)
	if normalized == "" {
		s.sink.Incr(CounterErrors)
		return nil, &ValidationError{Query: query, Reason: "query has no searchable text"}
	}
	key := cacheKey(normalized, o.PreferMetro)

	if res, ok := s.memory.Get(key); ok {
		s.sink.Incr(CounterHitsMemory)
		return res, nil
	}

	if res := s.fromDurable(ctx, key); res != nil {
		s.memory.Set(key, res)
		s.sink.Incr(CounterHitsDurable)
		return res.clone(), nil
	}

	res, repoErr := s.fromRepository(ctx, normalized, o)
	if repoErr != nil {
		s.sink.Incr(CounterErrors)
		logging.Warn("Location repository lookup failed",
			"query", normalized,
			"error", repoErr,
		)
	}
	if res != nil {
		s.storeDurable(ctx, key, res)
		s.memory.Set(key, res)
		s.sink.Incr(CounterHitsRepository)
		return res.clone(), nil
	}

	if loc, ok := lookupFallback(normalized); ok {
		res := loc.result()
		if repoErr != nil {
			logging.Warn("Serving location from fallback table", "query", normalized, "code", res.IATACode)
		}
		s.memory.Set(key, res)
		s.sink.Incr(CounterHitsFallback)
		return res.clone(), nil
	}

	if repoErr != nil {
		return nil, &TransientError{Query: query, Err: repoErr}
	}
	s.sink.Incr(CounterMisses)
	return nil, &NotFoundError{Query: query}
}

// ResolveAirportCode returns only the IATA code of the best match
func (s *LocationResolver) ResolveAirportCode(ctx context.Context, query string) (string, error) {
	res, err := s.Lookup(ctx, query)
	if err != nil {
		return "", err
	}
	return res.IATACode, nil
}

// GetAirportInfo returns nil when the query cannot be resolved
func (s *LocationResolver) GetAirportInfo(ctx context.Context, query string) *AirportInfo {
	res, err := s.Lookup(ctx, query)
	if err != nil {
		return nil
	}

	info := &AirportInfo{
		Code:       res.IATACode,
		Name:       res.Name,
		City:       res.City,
		Country:    res.Country,
		Type:       res.Type,
		Confidence: res.Confidence,
	}
	for _, alt := range res.Alternatives {
		info.Alternatives = append(info.Alternatives, alt.IATACode)
	}
	return info
}

func (s *LocationResolver) CanResolve(ctx context.Context, query string) bool {
	_, err := s.Lookup(ctx, query)
	return err == nil
}

// GetStats snapshots the counters. DurableSize is -1 when no durable cache is
// configured or it did not answer in time.
func (s *LocationResolver) GetStats(ctx context.Context) Stats {
	st := Stats{
		Hits: map[string]int64{
			"memory":     s.sink.Count(CounterHitsMemory),
			"durable":    s.sink.Count(CounterHitsDurable),
			"repository": s.sink.Count(CounterHitsRepository),
			"fallback":   s.sink.Count(CounterHitsFallback),
		},
		Misses:      s.sink.Count(CounterMisses),
		Errors:      s.sink.Count(CounterErrors),
		CacheSize:   s.memory.Len(),
		CacheLimit:  s.memory.capacity,
		DurableSize: -1,
	}

	if s.durable != nil {
		dctx, cancel := context.WithTimeout(ctx, s.cfg.DurableTimeout)
		n, err := s.durable.Count(dctx)
		cancel()
		if err == nil {
			st.DurableSize = n
		}
	}

	var hits int64
	for _, n := range st.Hits {
		hits += n
	}
	if total := hits + st.Misses; total > 0 {
		st.HitRate = math.Round(float64(hits)/float64(total)*10000) / 10000
	}

	if obs, ok := s.sink.(cacheSizeObserver); ok {
		obs.ObserveCacheSize("memory", st.CacheSize)
		if st.DurableSize >= 0 {
			obs.ObserveCacheSize("durable", int(st.DurableSize))
		}
	}
	return st
}

// ClearCache empties the in-process tier and returns how many entries it held
func (s *LocationResolver) ClearCache() int {
	n := s.memory.Len()
	s.memory.Purge()
	return n
}

// ClearDBCache deletes durable entries not accessed in olderThanDays days
// (30 when olderThanDays <= 0) and returns how many were removed.
func (s *LocationResolver) ClearDBCache(ctx context.Context, olderThanDays int) (int64, error) {
	if s.durable == nil {
		return 0, nil
	}
	if olderThanDays <= 0 {
		olderThanDays = DefaultRetentionDays
	}
	cutoff := s.now().Add(-time.Duration(olderThanDays) * 24 * time.Hour)
	return s.durable.DeleteOlderThan(ctx, cutoff)
}

func (s *LocationResolver) fromRepository(ctx context.Context, normalized string, o LookupOptions) (*LookupResult, error) {
	rctx, cancel := context.WithTimeout(ctx, s.cfg.RepositoryTimeout)
	defer cancel()

	cands, err := firstMatch(rctx, s.strategies(o.Fuzzy), lookupRequest{query: normalized, opts: o})
	if err != nil {
		return nil, err
	}
	return selectResult(rankCandidates(cands), o.MaxResults, SourceRepository), nil
}

// fromDurable returns nil on any miss: absent, stale, low confidence, the
// code no longer resolving, or the store failing or timing out.
func (s *LocationResolver) fromDurable(ctx context.Context, key string) *LookupResult {
	if s.durable == nil {
		return nil
	}

	dctx, cancel := context.WithTimeout(ctx, s.cfg.DurableTimeout)
	entry, err := s.durable.Get(dctx, key)
	cancel()
	if err != nil {
		s.sink.Incr(CounterErrors)
		logging.Warn("Durable lookup cache read failed", "key", key, "error", err)
		return nil
	}
	if entry == nil || entry.Confidence < MinConfidence {
		return nil
	}
	if s.now().Sub(entry.LastAccessed) > s.cfg.DurableTTL {
		return nil
	}

	rctx, cancel := context.WithTimeout(ctx, s.cfg.RepositoryTimeout)
	match, err := s.matchByCode(rctx, LocationType(entry.ResultType), entry.ResultIATA)
	cancel()
	if err != nil {
		s.sink.Incr(CounterErrors)
		logging.Warn("Failed to re-resolve durable cache entry", "key", key, "code", entry.ResultIATA, "error", err)
		return nil
	}
	if match == nil {
		return nil
	}

	res := resultFromMatch(match, entry.Confidence, SourceDurableCache)
	if entry.Alternatives != "" {
		if err := json.Unmarshal([]byte(entry.Alternatives), &res.Alternatives); err != nil {
			logging.Warn("Discarding unreadable cached alternatives", "key", key, "error", err)
			res.Alternatives = nil
		}
	}

	s.touchDurable(ctx, entry)
	return res
}

func (s *LocationResolver) matchByCode(ctx context.Context, typ LocationType, code string) (LocationMatch, error) {
	switch typ {
	case LocationTypeMetro:
		metro, err := s.repo.FindMetroByCode(ctx, code)
		if err != nil || metro == nil {
			return nil, err
		}
		return MetroMatch{Metro: metro}, nil
	case LocationTypeAirport:
		airport, err := s.repo.FindAirportByCode(ctx, code)
		if err != nil || airport == nil {
			return nil, err
		}
		return AirportMatch{Airport: airport}, nil
	}
	return nil, nil
}

// touchDurable bumps hit_count and last_accessed through the upsert
func (s *LocationResolver) touchDurable(ctx context.Context, entry *gormModels.LocationLookupCache) {
	touched := *entry
	touched.LastAccessed = s.now()

	dctx, cancel := context.WithTimeout(ctx, s.cfg.DurableTimeout)
	defer cancel()
	if err := s.durable.Upsert(dctx, &touched); err != nil {
		logging.Warn("Failed to refresh durable cache entry", "key", entry.Query, "error", err)
	}
}

func (s *LocationResolver) storeDurable(ctx context.Context, key string, res *LookupResult) {
	if s.durable == nil {
		return
	}

	alts := ""
	if len(res.Alternatives) > 0 {
		b, err := json.Marshal(res.Alternatives)
		if err == nil {
			alts = string(b)
		}
	}

	now := s.now()
	entry := &gormModels.LocationLookupCache{
		Query:        key,
		ResultType:   string(res.Type),
		ResultIATA:   res.IATACode,
		ResultID:     res.LocationID,
		Alternatives: alts,
		Confidence:   res.Confidence,
		HitCount:     1,
		LastAccessed: now,
		CreatedAt:    now,
	}

	dctx, cancel := context.WithTimeout(ctx, s.cfg.DurableTimeout)
	defer cancel()
	if err := s.durable.Upsert(dctx, entry); err != nil {
		logging.Warn("Failed to write durable lookup cache", "key", key, "error", err)
	}
}
