package repositories

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"infinite-experiment/wayfinder/internal/models/gorm"
	"infinite-experiment/wayfinder/internal/textsim"

	"golang.org/x/sync/singleflight"
	gormlib "gorm.io/gorm"
)

const (
	searchIndexKey = "location_search_index"

	// ctxCheckEvery controls how often the fuzzy scan polls for cancellation
	ctxCheckEvery = 256
)

// IndexCache holds the fuzzy search index snapshot between rebuilds.
// *common.CacheService and *cache.Cache both satisfy it.
type IndexCache interface {
	Get(key string) (interface{}, bool)
	Set(key string, value interface{}, duration time.Duration)
	Delete(key string)
}

// FuzzyHit is one fuzzy search result. Exactly one of Metro and Airport is set.
type FuzzyHit struct {
	Metro      *gorm.MetroArea
	Airport    *gorm.Airport
	Similarity float64
	Matched    string
}

// Code returns the IATA code of whichever location the hit refers to
func (h FuzzyHit) Code() string {
	if h.Metro != nil {
		return h.Metro.IATA
	}
	if h.Airport != nil {
		return h.Airport.IATA
	}
	return ""
}

type searchEntry struct {
	text    string
	metro   *gorm.MetroArea
	airport *gorm.Airport
}

type searchIndex struct {
	entries []searchEntry
	builtAt time.Time
}

// LocationRepository handles read access to airports, metro areas and
// aliases, plus the bulk replace used by the dataset loader.
type LocationRepository struct {
	db       *gormlib.DB
	cache    IndexCache
	indexTTL time.Duration
	group    singleflight.Group
}

// NewLocationRepository creates a new location repository
func NewLocationRepository(db *gormlib.DB, cache IndexCache, indexTTL time.Duration) *LocationRepository {
	if indexTTL <= 0 {
		indexTTL = 10 * time.Minute
	}
	return &LocationRepository{db: db, cache: cache, indexTTL: indexTTL}
}

// FindMetroByCode finds a metro area by its IATA code (case-insensitive)
func (r *LocationRepository) FindMetroByCode(ctx context.Context, code string) (*gorm.MetroArea, error) {
	var metro gorm.MetroArea

	err := r.db.WithContext(ctx).
		Preload("Airports", activeAirports).
		Where("UPPER(iata) = UPPER(?)", code).
		First(&metro).Error

	if err != nil {
		if errors.Is(err, gormlib.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &metro, nil
}

// FindAirportByCode finds an active airport by IATA code (case-insensitive)
func (r *LocationRepository) FindAirportByCode(ctx context.Context, code string) (*gorm.Airport, error) {
	var airport gorm.Airport

	err := r.db.WithContext(ctx).
		Where("UPPER(iata) = UPPER(?) AND is_active = ?", code, true).
		First(&airport).Error

	if err != nil {
		if errors.Is(err, gormlib.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &airport, nil
}

// FindMetroForAirport returns the metro area containing the airport, if any
func (r *LocationRepository) FindMetroForAirport(ctx context.Context, airportCode string) (*gorm.MetroArea, error) {
	airport, err := r.FindAirportByCode(ctx, airportCode)
	if err != nil || airport == nil || !airport.InMetro() {
		return nil, err
	}

	var metro gorm.MetroArea
	err = r.db.WithContext(ctx).
		Preload("Airports", activeAirports).
		Where("id = ?", *airport.MetroAreaID).
		First(&metro).Error

	if err != nil {
		if errors.Is(err, gormlib.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &metro, nil
}

// FindMetrosByName returns metro areas whose name matches name under
// textsim.Key, so case and accents are ignored
func (r *LocationRepository) FindMetrosByName(ctx context.Context, name string) ([]gorm.MetroArea, error) {
	var metros []gorm.MetroArea

	err := r.db.WithContext(ctx).
		Preload("Airports", activeAirports).
		Where("search_name = ?", textsim.Key(name)).
		Order("iata").
		Find(&metros).Error

	return metros, err
}

// FindAirportsByName returns active airports whose city or name matches name
// under textsim.Key, busiest first.
func (r *LocationRepository) FindAirportsByName(ctx context.Context, name string) ([]gorm.Airport, error) {
	var airports []gorm.Airport

	key := textsim.Key(name)
	err := r.db.WithContext(ctx).
		Where("is_active = ? AND (search_city = ? OR search_name = ?)", true, key, key).
		Order("COALESCE(passenger_count, 0) DESC").
		Order("iata").
		Find(&airports).Error

	return airports, err
}

// FindByAlias returns aliases equal to alias whose airport is still active,
// with the airport preloaded
func (r *LocationRepository) FindByAlias(ctx context.Context, alias string) ([]gorm.AirportAlias, error) {
	var aliases []gorm.AirportAlias

	err := r.db.WithContext(ctx).
		Preload("Airport").
		Where("alias = ?", strings.ToLower(strings.TrimSpace(alias))).
		Find(&aliases).Error
	if err != nil {
		return nil, err
	}

	active := aliases[:0]
	for _, a := range aliases {
		if a.Airport.ID != "" && a.Airport.IsActive {
			active = append(active, a)
		}
	}
	return active, nil
}

// FindFuzzy scores query against every searchable name, city and alias and
// returns the best hit per location with similarity strictly above
// minSimilarity, highest first, at most limit hits. Metro hits are skipped
// before the limit applies unless includeMetros is set.
func (r *LocationRepository) FindFuzzy(ctx context.Context, query string, minSimilarity float64, limit int, includeMetros bool) ([]FuzzyHit, error) {
	query = textsim.Fold(query)
	if len([]rune(query)) < 3 {
		return nil, nil
	}

	idx, err := r.searchIndex(ctx)
	if err != nil {
		return nil, err
	}

	best := make(map[string]FuzzyHit)
	for i, entry := range idx.entries {
		if i%ctxCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		if entry.metro != nil && !includeMetros {
			continue
		}

		score := textsim.Similarity(query, entry.text)
		if score <= minSimilarity {
			continue
		}

		hit := FuzzyHit{Metro: entry.metro, Airport: entry.airport, Similarity: score, Matched: entry.text}
		key := hitKey(hit)
		if prev, ok := best[key]; !ok || score > prev.Similarity {
			best[key] = hit
		}
	}

	hits := make([]FuzzyHit, 0, len(best))
	for _, h := range best {
		hits = append(hits, h)
	}
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Similarity != hits[j].Similarity {
			return hits[i].Similarity > hits[j].Similarity
		}
		return hitKey(hits[i]) < hitKey(hits[j])
	})

	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}

// WarmIndex rebuilds the fuzzy search index if the cached snapshot expired
func (r *LocationRepository) WarmIndex(ctx context.Context) (int, error) {
	idx, err := r.searchIndex(ctx)
	if err != nil {
		return 0, err
	}
	return len(idx.entries), nil
}

// InvalidateIndex drops the cached search index so the next fuzzy query rebuilds it
func (r *LocationRepository) InvalidateIndex() {
	if r.cache != nil {
		r.cache.Delete(searchIndexKey)
	}
}

// ReplaceAll deletes every location row and inserts the given dataset in one
// transaction. Metro and airport IDs must already be assigned so the
// metro_area_id and airport_id references line up.
func (r *LocationRepository) ReplaceAll(ctx context.Context, metros []gorm.MetroArea, airports []gorm.Airport, aliases []gorm.AirportAlias) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gormlib.DB) error {
		for _, model := range []interface{}{&gorm.AirportAlias{}, &gorm.Airport{}, &gorm.MetroArea{}} {
			if err := tx.Where("1 = 1").Delete(model).Error; err != nil {
				return fmt.Errorf("failed to clear %T: %w", model, err)
			}
		}
		if len(metros) > 0 {
			if err := tx.Omit("Airports").CreateInBatches(metros, 100).Error; err != nil {
				return fmt.Errorf("failed to insert metro areas: %w", err)
			}
		}
		if len(airports) > 0 {
			// Select("*") writes is_active=false instead of the column default
			if err := tx.Select("*").CreateInBatches(airports, 100).Error; err != nil {
				return fmt.Errorf("failed to insert airports: %w", err)
			}
		}
		if len(aliases) > 0 {
			if err := tx.Omit("Airport").CreateInBatches(aliases, 100).Error; err != nil {
				return fmt.Errorf("failed to insert aliases: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	r.InvalidateIndex()
	return nil
}

// Counts returns total rows per location table
func (r *LocationRepository) Counts(ctx context.Context) (map[string]int64, error) {
	counts := make(map[string]int64, 3)
	for name, model := range map[string]interface{}{
		"airports":    &gorm.Airport{},
		"metro_areas": &gorm.MetroArea{},
		"aliases":     &gorm.AirportAlias{},
	} {
		var n int64
		if err := r.db.WithContext(ctx).Model(model).Count(&n).Error; err != nil {
			return nil, err
		}
		counts[name] = n
	}
	return counts, nil
}

func (r *LocationRepository) searchIndex(ctx context.Context) (*searchIndex, error) {
	if r.cache != nil {
		if v, ok := r.cache.Get(searchIndexKey); ok {
			if idx, ok := v.(*searchIndex); ok {
				return idx, nil
			}
		}
	}

	// Concurrent misses share one build. The build runs detached from any
	// single caller so one canceled request does not fail the others.
	ch := r.group.DoChan(searchIndexKey, func() (interface{}, error) {
		buildCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
		defer cancel()

		idx, err := r.buildIndex(buildCtx)
		if err != nil {
			return nil, err
		}
		if r.cache != nil {
			r.cache.Set(searchIndexKey, idx, r.indexTTL)
		}
		return idx, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, fmt.Errorf("failed to build location search index: %w", res.Err)
		}
		return res.Val.(*searchIndex), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (r *LocationRepository) buildIndex(ctx context.Context) (*searchIndex, error) {
	var metros []gorm.MetroArea
	if err := r.db.WithContext(ctx).Preload("Airports", activeAirports).Find(&metros).Error; err != nil {
		return nil, err
	}

	var airports []gorm.Airport
	if err := r.db.WithContext(ctx).Where("is_active = ?", true).Find(&airports).Error; err != nil {
		return nil, err
	}

	var aliases []gorm.AirportAlias
	if err := r.db.WithContext(ctx).Find(&aliases).Error; err != nil {
		return nil, err
	}

	byID := make(map[string]*gorm.Airport, len(airports))
	entries := make([]searchEntry, 0, len(metros)+2*len(airports)+len(aliases))

	for i := range metros {
		entries = appendEntry(entries, metros[i].Name, &metros[i], nil)
	}
	for i := range airports {
		a := &airports[i]
		byID[a.ID] = a
		entries = appendEntry(entries, a.City, nil, a)
		entries = appendEntry(entries, a.Name, nil, a)
	}
	for _, alias := range aliases {
		// aliases of inactive airports are skipped
		if a, ok := byID[alias.AirportID]; ok {
			entries = appendEntry(entries, alias.Alias, nil, a)
		}
	}

	return &searchIndex{entries: entries, builtAt: time.Now()}, nil
}

func appendEntry(entries []searchEntry, text string, metro *gorm.MetroArea, airport *gorm.Airport) []searchEntry {
	text = textsim.Fold(text)
	if text == "" {
		return entries
	}
	return append(entries, searchEntry{text: text, metro: metro, airport: airport})
}

func hitKey(h FuzzyHit) string {
	if h.Metro != nil {
		return "metro:" + h.Metro.IATA
	}
	return "airport:" + h.Code()
}

func activeAirports(db *gormlib.DB) *gormlib.DB {
	return db.Where("is_active = ?", true).Order("metro_rank")
}
