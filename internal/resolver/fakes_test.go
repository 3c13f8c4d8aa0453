package resolver

import (
	"context"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"infinite-experiment/wayfinder/internal/db/repositories"
	gormModels "infinite-experiment/wayfinder/internal/models/gorm"
	"infinite-experiment/wayfinder/internal/textsim"
)

func ptr[T any](v T) *T { return &v }

// fakeRepository is an in-memory Repository that counts every call.
type fakeRepository struct {
	metros   []*gormModels.MetroArea
	airports []*gormModels.Airport
	aliases  []gormModels.AirportAlias

	// err, when set, is returned from every method
	err error
	// fuzzy, when set, replaces the built-in similarity scan
	fuzzy func(query string) []repositories.FuzzyHit

	calls atomic.Int64
}

func (f *fakeRepository) enter(ctx context.Context) error {
	f.calls.Add(1)
	if err := ctx.Err(); err != nil {
		return err
	}
	return f.err
}

func (f *fakeRepository) FindMetroByCode(ctx context.Context, code string) (*gormModels.MetroArea, error) {
	if err := f.enter(ctx); err != nil {
		return nil, err
	}
	for _, m := range f.metros {
		if strings.EqualFold(m.IATA, code) {
			return m, nil
		}
	}
	return nil, nil
}

func (f *fakeRepository) FindAirportByCode(ctx context.Context, code string) (*gormModels.Airport, error) {
	if err := f.enter(ctx); err != nil {
		return nil, err
	}
	for _, a := range f.airports {
		if strings.EqualFold(a.IATA, code) && a.IsActive {
			return a, nil
		}
	}
	return nil, nil
}

func (f *fakeRepository) FindMetroForAirport(ctx context.Context, airportCode string) (*gormModels.MetroArea, error) {
	a, err := f.FindAirportByCode(ctx, airportCode)
	if err != nil || a == nil || !a.InMetro() {
		return nil, err
	}
	for _, m := range f.metros {
		if m.ID == *a.MetroAreaID {
			return m, nil
		}
	}
	return nil, nil
}

func (f *fakeRepository) FindMetrosByName(ctx context.Context, name string) ([]gormModels.MetroArea, error) {
	if err := f.enter(ctx); err != nil {
		return nil, err
	}
	var out []gormModels.MetroArea
	for _, m := range f.metros {
		if textsim.Key(m.Name) == textsim.Key(name) {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (f *fakeRepository) FindAirportsByName(ctx context.Context, name string) ([]gormModels.Airport, error) {
	if err := f.enter(ctx); err != nil {
		return nil, err
	}
	var out []gormModels.Airport
	for _, a := range f.airports {
		key := textsim.Key(name)
		if a.IsActive && (textsim.Key(a.City) == key || textsim.Key(a.Name) == key) {
			out = append(out, *a)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Passengers() > out[j].Passengers() })
	return out, nil
}

func (f *fakeRepository) FindByAlias(ctx context.Context, alias string) ([]gormModels.AirportAlias, error) {
	if err := f.enter(ctx); err != nil {
		return nil, err
	}
	var out []gormModels.AirportAlias
	for _, a := range f.aliases {
		if a.Alias == strings.ToLower(alias) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeRepository) FindFuzzy(ctx context.Context, query string, minSimilarity float64, limit int, includeMetros bool) ([]repositories.FuzzyHit, error) {
	if err := f.enter(ctx); err != nil {
		return nil, err
	}
	if f.fuzzy != nil {
		return f.fuzzy(query), nil
	}

	best := map[string]repositories.FuzzyHit{}
	consider := func(text string, hit repositories.FuzzyHit) {
		hit.Similarity = textsim.Similarity(query, textsim.Fold(text))
		if hit.Similarity <= minSimilarity {
			return
		}
		key := hit.Code()
		if hit.Metro != nil {
			key = "metro:" + key
		}
		if prev, ok := best[key]; !ok || hit.Similarity > prev.Similarity {
			best[key] = hit
		}
	}
	if includeMetros {
		for _, m := range f.metros {
			consider(m.Name, repositories.FuzzyHit{Metro: m})
		}
	}
	for _, a := range f.airports {
		consider(a.City, repositories.FuzzyHit{Airport: a})
		consider(a.Name, repositories.FuzzyHit{Airport: a})
	}

	hits := make([]repositories.FuzzyHit, 0, len(best))
	for _, h := range best {
		hits = append(hits, h)
	}
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Similarity != hits[j].Similarity {
			return hits[i].Similarity > hits[j].Similarity
		}
		return hits[i].Code() < hits[j].Code()
	})
	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}

// fakeDurable is an in-memory DurableCache.
type fakeDurable struct {
	mu      sync.Mutex
	entries map[string]gormModels.LocationLookupCache
	upserts int
	cutoff  time.Time

	getErr error
}

func newFakeDurable() *fakeDurable {
	return &fakeDurable{entries: map[string]gormModels.LocationLookupCache{}}
}

func (d *fakeDurable) Get(ctx context.Context, key string) (*gormModels.LocationLookupCache, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.getErr != nil {
		return nil, d.getErr
	}
	e, ok := d.entries[key]
	if !ok {
		return nil, nil
	}
	return &e, nil
}

func (d *fakeDurable) Upsert(ctx context.Context, entry *gormModels.LocationLookupCache) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.upserts++
	e := *entry
	if prev, ok := d.entries[entry.Query]; ok {
		e.HitCount = prev.HitCount + 1
		e.CreatedAt = prev.CreatedAt
	} else {
		e.HitCount = 1
	}
	d.entries[entry.Query] = e
	return nil
}

func (d *fakeDurable) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cutoff = cutoff
	var n int64
	for k, e := range d.entries {
		if e.LastAccessed.Before(cutoff) {
			delete(d.entries, k)
			n++
		}
	}
	return n, nil
}

func (d *fakeDurable) Count(ctx context.Context) (int64, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return int64(len(d.entries)), nil
}

// newTestRepository returns a small world: NYC and LON metros, Toronto's two
// airports outside any metro, and a couple of aliases.
func newTestRepository() *fakeRepository {
	nyc := &gormModels.MetroArea{ID: "m-nyc", IATA: "NYC", Name: "New York", Country: "United States", CountryCode: "US"}
	lon := &gormModels.MetroArea{ID: "m-lon", IATA: "LON", Name: "London", Country: "United Kingdom", CountryCode: "GB"}

	jfk := &gormModels.Airport{ID: "a-jfk", IATA: "JFK", Name: "John F. Kennedy International Airport", City: "New York", Country: "United States", PassengerCount: ptr(int64(62_000_000)), IsActive: true, MetroAreaID: ptr("m-nyc"), MetroRank: 0}
	ewr := &gormModels.Airport{ID: "a-ewr", IATA: "EWR", Name: "Newark Liberty International Airport", City: "Newark", Country: "United States", PassengerCount: ptr(int64(43_000_000)), IsActive: true, MetroAreaID: ptr("m-nyc"), MetroRank: 1}
	lga := &gormModels.Airport{ID: "a-lga", IATA: "LGA", Name: "LaGuardia Airport", City: "New York", Country: "United States", PassengerCount: ptr(int64(29_000_000)), IsActive: true, MetroAreaID: ptr("m-nyc"), MetroRank: 2}
	lhr := &gormModels.Airport{ID: "a-lhr", IATA: "LHR", Name: "Heathrow Airport", City: "London", Country: "United Kingdom", PassengerCount: ptr(int64(79_000_000)), IsActive: true, MetroAreaID: ptr("m-lon"), MetroRank: 0}
	lgw := &gormModels.Airport{ID: "a-lgw", IATA: "LGW", Name: "Gatwick Airport", City: "London", Country: "United Kingdom", PassengerCount: ptr(int64(40_000_000)), IsActive: true, MetroAreaID: ptr("m-lon"), MetroRank: 1}
	yyz := &gormModels.Airport{ID: "a-yyz", IATA: "YYZ", Name: "Toronto Pearson International Airport", City: "Toronto", Country: "Canada", PassengerCount: ptr(int64(44_000_000)), IsActive: true}
	ytz := &gormModels.Airport{ID: "a-ytz", IATA: "YTZ", Name: "Billy Bishop Toronto City Airport", City: "Toronto", Country: "Canada", PassengerCount: ptr(int64(2_800_000)), IsActive: true}
	yvr := &gormModels.Airport{ID: "a-yvr", IATA: "YVR", Name: "Vancouver International Airport", City: "Vancouver", Country: "Canada", PassengerCount: ptr(int64(26_000_000)), IsActive: true}

	nyc.Airports = []gormModels.Airport{*jfk, *ewr, *lga}
	lon.Airports = []gormModels.Airport{*lhr, *lgw}

	return &fakeRepository{
		metros:   []*gormModels.MetroArea{nyc, lon},
		airports: []*gormModels.Airport{jfk, ewr, lga, lhr, lgw, yyz, ytz, yvr},
		aliases: []gormModels.AirportAlias{
			{ID: "al-1", Alias: "pearson", AirportID: yyz.ID, Airport: *yyz},
			{ID: "al-2", Alias: "kennedy", AirportID: jfk.ID, Airport: *jfk, Confidence: ptr(0.8)},
			{ID: "al-3", Alias: "london heathrow", AirportID: lhr.ID, Airport: *lhr, Confidence: ptr(0.99)},
		},
	}
}
