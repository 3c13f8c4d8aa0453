package resolver

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"testing"
	"time"

	"infinite-experiment/wayfinder/internal/db/repositories"
	"infinite-experiment/wayfinder/internal/metrics"
	gormModels "infinite-experiment/wayfinder/internal/models/gorm"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestResolver(t *testing.T, repo Repository, durable DurableCache, opts ...Option) (*LocationResolver, *metrics.LookupCounters) {
	t.Helper()
	sink := metrics.NewLookupCounters(nil)
	opts = append([]Option{WithClock(func() time.Time { return testNow })}, opts...)
	r, err := NewLocationResolver(repo, durable, sink, opts...)
	if err != nil {
		t.Fatalf("NewLocationResolver: %v", err)
	}
	return r, sink
}

func TestLookup_ExactAirportCode(t *testing.T) {
	r, _ := newTestResolver(t, newTestRepository(), nil)

	res, err := r.Lookup(context.Background(), "YYZ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.IATACode != "YYZ" || res.Type != LocationTypeAirport {
		t.Errorf("got %s/%s, want YYZ/airport", res.IATACode, res.Type)
	}
	if res.Confidence != 1.0 {
		t.Errorf("confidence = %v, want 1.0", res.Confidence)
	}
	if res.Source != SourceRepository {
		t.Errorf("source = %q", res.Source)
	}
}

func TestLookup_ExactCodeConfidence(t *testing.T) {
	repo := newTestRepository()
	r, _ := newTestResolver(t, repo, nil)
	ctx := context.Background()

	for _, a := range repo.airports {
		res, err := r.Lookup(ctx, a.IATA)
		if err != nil {
			t.Fatalf("%s: %v", a.IATA, err)
		}
		want := 1.0
		if a.InMetro() {
			want = PromotedConfidence
		}
		if res.Confidence != want {
			t.Errorf("%s: confidence = %v, want %v", a.IATA, res.Confidence, want)
		}
	}

	for _, m := range repo.metros {
		res, err := r.Lookup(ctx, m.IATA)
		if err != nil {
			t.Fatalf("%s: %v", m.IATA, err)
		}
		if res.Type != LocationTypeMetro || res.IATACode != m.IATA || res.Confidence != 1.0 {
			t.Errorf("%s: got %+v", m.IATA, res)
		}
	}
}

func TestLookup_PromotedAirportIsAlternative(t *testing.T) {
	r, _ := newTestResolver(t, newTestRepository(), nil)

	res, err := r.Lookup(context.Background(), "jfk")
	if err != nil {
		t.Fatal(err)
	}
	if res.IATACode != "NYC" || res.Type != LocationTypeMetro {
		t.Fatalf("expected promotion to NYC, got %s", res.IATACode)
	}
	if len(res.Alternatives) != 1 || res.Alternatives[0].IATACode != "JFK" {
		t.Errorf("expected JFK as the only alternative, got %+v", res.Alternatives)
	}
}

func TestLookup_PreferMetroDisabled(t *testing.T) {
	r, _ := newTestResolver(t, newTestRepository(), nil)

	res, err := r.Lookup(context.Background(), "JFK", WithPreferMetro(false))
	if err != nil {
		t.Fatal(err)
	}
	if res.IATACode != "JFK" || res.Type != LocationTypeAirport || res.Confidence != 1.0 {
		t.Errorf("got %+v", res)
	}
}

func TestLookup_CityName(t *testing.T) {
	r, _ := newTestResolver(t, newTestRepository(), nil)

	res, err := r.Lookup(context.Background(), "Toronto", WithPreferMetro(true))
	if err != nil {
		t.Fatal(err)
	}
	if res.City != "Toronto" || res.Confidence < 0.95 {
		t.Errorf("got %+v", res)
	}
	if res.IATACode != "YYZ" {
		t.Errorf("busiest airport should win the tie, got %s", res.IATACode)
	}
	if len(res.Alternatives) != 1 || res.Alternatives[0].IATACode != "YTZ" {
		t.Errorf("expected YTZ alternative, got %+v", res.Alternatives)
	}
}

func TestLookup_MetroName(t *testing.T) {
	r, _ := newTestResolver(t, newTestRepository(), nil)

	res, err := r.Lookup(context.Background(), "New York City")
	if err != nil {
		t.Fatal(err)
	}
	if res.IATACode != "NYC" || res.Confidence != 1.0 {
		t.Fatalf("got %+v", res)
	}

	var codes []string
	for _, a := range res.Alternatives {
		codes = append(codes, a.IATACode)
	}
	if !reflect.DeepEqual(codes, []string{"JFK", "LGA"}) {
		t.Errorf("alternatives = %v, want [JFK LGA]", codes)
	}
}

func TestLookup_MaxResultsCapsAlternatives(t *testing.T) {
	r, _ := newTestResolver(t, newTestRepository(), nil)

	res, err := r.Lookup(context.Background(), "new york", WithMaxResults(1))
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Alternatives) != 1 {
		t.Errorf("alternatives = %d, want 1", len(res.Alternatives))
	}
}

func TestLookup_Alias(t *testing.T) {
	r, _ := newTestResolver(t, newTestRepository(), nil)
	ctx := context.Background()

	tests := []struct {
		query    string
		wantCode string
		wantConf float64
	}{
		{"pearson", "YYZ", DefaultAliasConfidence},
		{"Kennedy", "NYC", 0.8},
		{"London Heathrow Airport", "LON", PromotedConfidence},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			res, err := r.Lookup(ctx, tt.query)
			if err != nil {
				t.Fatal(err)
			}
			if res.IATACode != tt.wantCode || res.Confidence != tt.wantConf {
				t.Errorf("got %s@%v, want %s@%v", res.IATACode, res.Confidence, tt.wantCode, tt.wantConf)
			}
		})
	}
}

func TestLookup_FuzzyTypo(t *testing.T) {
	r, _ := newTestResolver(t, newTestRepository(), nil)

	for _, q := range []string{"torotno", "torontp"} {
		res, err := r.Lookup(context.Background(), q, WithFuzzy(true))
		if err != nil {
			t.Fatalf("%s: %v", q, err)
		}
		if res.City != "Toronto" {
			t.Errorf("%s: resolved to %s (%s)", q, res.IATACode, res.City)
		}
		if res.Confidence < 0.5 || res.Confidence > 0.9 {
			t.Errorf("%s: confidence %v outside [0.5, 0.9]", q, res.Confidence)
		}
	}
}

func TestLookup_FuzzyBelowSimilarityFloor(t *testing.T) {
	r, _ := newTestResolver(t, newTestRepository(), nil)

	_, err := r.Lookup(context.Background(), "xqzvbn", WithFuzzy(true))
	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestLookup_FuzzyDisabled(t *testing.T) {
	r, _ := newTestResolver(t, newTestRepository(), nil)

	_, err := r.Lookup(context.Background(), "torotno", WithFuzzy(false))
	if !errors.Is(err, ErrLocationNotFound) {
		t.Fatalf("expected not found with fuzzy disabled, got %v", err)
	}
}

func TestLookup_FuzzyNeverBelowMinConfidence(t *testing.T) {
	yyz := newTestRepository().airports[5]

	for sim := 0.31; sim <= 1.0; sim += 0.01 {
		repo := newTestRepository()
		s := sim
		repo.fuzzy = func(string) []repositories.FuzzyHit {
			return []repositories.FuzzyHit{{Airport: yyz, Similarity: s}}
		}
		r, _ := newTestResolver(t, repo, nil)

		res, err := r.Lookup(context.Background(), "qwerty")
		if err != nil {
			if !errors.Is(err, ErrLocationNotFound) {
				t.Fatalf("sim %.2f: unexpected error %v", s, err)
			}
			continue
		}
		if res.Confidence < MinConfidence {
			t.Errorf("sim %.2f: confidence %v below floor", s, res.Confidence)
		}
	}
}

func TestLookup_EmptyQuery(t *testing.T) {
	repo := newTestRepository()
	r, sink := newTestResolver(t, repo, nil)

	for _, q := range []string{"", "   ", "\t\n"} {
		_, err := r.Lookup(context.Background(), q)
		var ve *ValidationError
		if !errors.As(err, &ve) {
			t.Fatalf("%q: expected ValidationError, got %v", q, err)
		}
		if !errors.Is(err, ErrInvalidQuery) {
			t.Errorf("%q: expected errors.Is ErrInvalidQuery", q)
		}
	}

	if n := repo.calls.Load(); n != 0 {
		t.Errorf("repository called %d times for invalid input", n)
	}
	if n := sink.Count(CounterErrors); n != 3 {
		t.Errorf("errors counter = %d, want 3", n)
	}
}

func TestLookup_UnknownCity(t *testing.T) {
	r, sink := newTestResolver(t, newTestRepository(), nil)

	_, err := r.Lookup(context.Background(), "Springfield")
	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
	if nf.Query != "Springfield" {
		t.Errorf("query = %q", nf.Query)
	}
	if sink.Count(CounterMisses) != 1 {
		t.Errorf("misses = %d", sink.Count(CounterMisses))
	}

	// failures are never cached
	if _, err := r.Lookup(context.Background(), "Springfield"); err == nil {
		t.Fatal("expected second lookup to fail too")
	}
	if r.memory.Len() != 0 {
		t.Errorf("memory cache holds %d entries after failed lookups", r.memory.Len())
	}
}

func TestLookup_SecondCallServedFromMemory(t *testing.T) {
	repo := newTestRepository()
	r, sink := newTestResolver(t, repo, nil)
	ctx := context.Background()

	first, err := r.Lookup(ctx, "NYC")
	if err != nil {
		t.Fatal(err)
	}
	callsAfterFirst := repo.calls.Load()
	if callsAfterFirst == 0 {
		t.Fatal("first lookup should reach the repository")
	}

	second, err := r.Lookup(ctx, "NYC")
	if err != nil {
		t.Fatal(err)
	}
	if n := repo.calls.Load(); n != callsAfterFirst {
		t.Errorf("second lookup hit the repository (%d -> %d calls)", callsAfterFirst, n)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("results differ:\n%+v\n%+v", first, second)
	}
	if sink.Count(CounterHitsMemory) != 1 || sink.Count(CounterHitsRepository) != 1 {
		t.Errorf("memory=%d repository=%d", sink.Count(CounterHitsMemory), sink.Count(CounterHitsRepository))
	}
}

func TestLookup_IdempotentCode(t *testing.T) {
	repo := newTestRepository()
	r, _ := newTestResolver(t, repo, nil)

	first, _ := r.Lookup(context.Background(), "YYZ")
	calls := repo.calls.Load()
	second, _ := r.Lookup(context.Background(), "yyz ")

	if first.IATACode != second.IATACode || first.Confidence != second.Confidence {
		t.Errorf("results differ: %+v vs %+v", first, second)
	}
	if repo.calls.Load() != calls {
		t.Error("second lookup should be served from memory")
	}
}

func TestLookup_CacheKeyIncludesMode(t *testing.T) {
	r, _ := newTestResolver(t, newTestRepository(), nil)
	ctx := context.Background()

	metro, _ := r.Lookup(ctx, "JFK")
	airport, _ := r.Lookup(ctx, "JFK", WithPreferMetro(false))

	if metro.IATACode != "NYC" || airport.IATACode != "JFK" {
		t.Errorf("got %s and %s, want NYC and JFK", metro.IATACode, airport.IATACode)
	}
}

func TestLookup_ResultsAreNotShared(t *testing.T) {
	r, _ := newTestResolver(t, newTestRepository(), nil)
	ctx := context.Background()

	res, _ := r.Lookup(ctx, "new york")
	res.Alternatives[0].IATACode = "XXX"

	again, _ := r.Lookup(ctx, "new york")
	if again.Alternatives[0].IATACode == "XXX" {
		t.Error("mutating a returned result changed the cached copy")
	}
}

func TestLookup_RepositoryFailureUsesFallback(t *testing.T) {
	repo := newTestRepository()
	repo.err = errors.New("connection refused")
	r, sink := newTestResolver(t, repo, nil)

	res, err := r.Lookup(context.Background(), "new york")
	if err != nil {
		t.Fatalf("expected fallback to answer, got %v", err)
	}
	if res.Source != SourceFallback {
		t.Errorf("source = %q, want fallback", res.Source)
	}
	if res.Confidence < 0.8 || res.Confidence > 0.9 {
		t.Errorf("confidence %v outside [0.8, 0.9]", res.Confidence)
	}
	if sink.Count(CounterErrors) != 1 || sink.Count(CounterHitsFallback) != 1 {
		t.Errorf("errors=%d fallback=%d", sink.Count(CounterErrors), sink.Count(CounterHitsFallback))
	}
}

func TestLookup_RepositoryFailureWithoutFallback(t *testing.T) {
	cause := errors.New("connection refused")
	repo := newTestRepository()
	repo.err = cause
	r, _ := newTestResolver(t, repo, nil)

	_, err := r.Lookup(context.Background(), "Springfield")
	var te *TransientError
	if !errors.As(err, &te) {
		t.Fatalf("expected TransientError, got %v", err)
	}
	if !errors.Is(err, cause) || !errors.Is(err, ErrStoreUnavailable) {
		t.Errorf("error chain does not carry the cause: %v", err)
	}
}

func TestLookup_FallbackNotConsultedFirst(t *testing.T) {
	r, _ := newTestResolver(t, newTestRepository(), nil)

	res, err := r.Lookup(context.Background(), "toronto")
	if err != nil {
		t.Fatal(err)
	}
	if res.Source != SourceRepository {
		t.Errorf("source = %q, want repository", res.Source)
	}
}

func TestLookup_CanceledContext(t *testing.T) {
	r, _ := newTestResolver(t, newTestRepository(), nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.Lookup(ctx, "Springfield")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancellation to propagate, got %v", err)
	}

	res, err := r.Lookup(ctx, "new york")
	if err != nil || res.Source != SourceFallback {
		t.Errorf("fallback should still answer: %+v %v", res, err)
	}
}

func TestLookup_DurableCacheServesNewProcess(t *testing.T) {
	repo := newTestRepository()
	durable := newFakeDurable()

	first, _ := newTestResolver(t, repo, durable)
	if _, err := first.Lookup(context.Background(), "JFK"); err != nil {
		t.Fatal(err)
	}
	entry, ok := durable.entries["jfk:metro"]
	if !ok {
		t.Fatalf("durable entry not written; have %v", durable.entries)
	}
	if entry.ResultIATA != "NYC" || entry.ResultType != "metro" || entry.ResultID != "m-nyc" {
		t.Errorf("unexpected entry %+v", entry)
	}

	second, sink := newTestResolver(t, repo, durable)
	res, err := second.Lookup(context.Background(), "JFK")
	if err != nil {
		t.Fatal(err)
	}
	if res.Source != SourceDurableCache || res.IATACode != "NYC" || res.Confidence != PromotedConfidence {
		t.Errorf("got %+v", res)
	}
	if len(res.Alternatives) != 1 || res.Alternatives[0].IATACode != "JFK" {
		t.Errorf("alternatives not restored: %+v", res.Alternatives)
	}
	if durable.entries["jfk:metro"].HitCount != 2 {
		t.Errorf("hit count = %d, want 2", durable.entries["jfk:metro"].HitCount)
	}
	if sink.Count(CounterHitsDurable) != 1 {
		t.Errorf("durable hits = %d", sink.Count(CounterHitsDurable))
	}

	// now cached in memory as well
	if _, err := second.Lookup(context.Background(), "JFK"); err != nil {
		t.Fatal(err)
	}
	if sink.Count(CounterHitsMemory) != 1 {
		t.Errorf("memory hits = %d", sink.Count(CounterHitsMemory))
	}
}

func TestLookup_DurableEntryIgnored(t *testing.T) {
	tests := []struct {
		name  string
		entry gormModels.LocationLookupCache
	}{
		{"stale", gormModels.LocationLookupCache{ResultType: "airport", ResultIATA: "YVR", Confidence: 1, LastAccessed: testNow.Add(-8 * 24 * time.Hour)}},
		{"low confidence", gormModels.LocationLookupCache{ResultType: "airport", ResultIATA: "YVR", Confidence: 0.4, LastAccessed: testNow}},
		{"code no longer resolves", gormModels.LocationLookupCache{ResultType: "airport", ResultIATA: "ZZZ", Confidence: 1, LastAccessed: testNow}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			durable := newFakeDurable()
			tt.entry.Query = "toronto:metro"
			durable.entries[tt.entry.Query] = tt.entry

			r, _ := newTestResolver(t, newTestRepository(), durable)
			res, err := r.Lookup(context.Background(), "Toronto")
			if err != nil {
				t.Fatal(err)
			}
			if res.Source != SourceRepository || res.IATACode != "YYZ" {
				t.Errorf("got %s from %s, want YYZ from repository", res.IATACode, res.Source)
			}
		})
	}
}

func TestLookup_DurableFailureIsAMiss(t *testing.T) {
	durable := newFakeDurable()
	durable.getErr = errors.New("i/o timeout")
	r, sink := newTestResolver(t, newTestRepository(), durable)

	res, err := r.Lookup(context.Background(), "YYZ")
	if err != nil {
		t.Fatal(err)
	}
	if res.Source != SourceRepository {
		t.Errorf("source = %q", res.Source)
	}
	if sink.Count(CounterErrors) != 1 {
		t.Errorf("errors = %d, want 1", sink.Count(CounterErrors))
	}
}

func TestLookup_FallbackNotWrittenToDurable(t *testing.T) {
	repo := newTestRepository()
	repo.err = errors.New("down")
	durable := newFakeDurable()
	r, _ := newTestResolver(t, repo, durable)

	if _, err := r.Lookup(context.Background(), "paris"); err != nil {
		t.Fatal(err)
	}
	if len(durable.entries) != 0 {
		t.Errorf("fallback result written to durable cache: %v", durable.entries)
	}
}

func TestResolveAirportCode(t *testing.T) {
	r, _ := newTestResolver(t, newTestRepository(), nil)

	code, err := r.ResolveAirportCode(context.Background(), "vancouver")
	if err != nil || code != "YVR" {
		t.Errorf("got %q, %v", code, err)
	}

	if _, err := r.ResolveAirportCode(context.Background(), ""); !errors.Is(err, ErrInvalidQuery) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestGetAirportInfo(t *testing.T) {
	r, _ := newTestResolver(t, newTestRepository(), nil)

	info := r.GetAirportInfo(context.Background(), "london")
	if info == nil {
		t.Fatal("expected info for london")
	}
	if info.Code != "LON" || info.Type != LocationTypeMetro {
		t.Errorf("got %+v", info)
	}
	if !reflect.DeepEqual(info.Alternatives, []string{"LHR", "LGW"}) {
		t.Errorf("alternatives = %v", info.Alternatives)
	}

	if r.GetAirportInfo(context.Background(), "Springfield") != nil {
		t.Error("expected nil for unresolvable query")
	}
}

func TestCanResolve(t *testing.T) {
	r, _ := newTestResolver(t, newTestRepository(), nil)
	ctx := context.Background()

	if !r.CanResolve(ctx, "YYZ") {
		t.Error("YYZ should resolve")
	}
	if r.CanResolve(ctx, "Springfield") {
		t.Error("Springfield should not resolve")
	}
	if r.CanResolve(ctx, "") {
		t.Error("empty input should not resolve")
	}
}

func TestGetStats(t *testing.T) {
	durable := newFakeDurable()
	r, _ := newTestResolver(t, newTestRepository(), durable)
	ctx := context.Background()

	r.Lookup(ctx, "YYZ")
	r.Lookup(ctx, "YYZ")
	r.Lookup(ctx, "Springfield")
	r.Lookup(ctx, "")

	st := r.GetStats(ctx)
	if st.Hits["repository"] != 1 || st.Hits["memory"] != 1 || st.Hits["durable"] != 0 || st.Hits["fallback"] != 0 {
		t.Errorf("hits = %v", st.Hits)
	}
	if st.Misses != 1 || st.Errors != 1 {
		t.Errorf("misses=%d errors=%d", st.Misses, st.Errors)
	}
	if st.CacheSize != 1 || st.CacheLimit != DefaultMemoryCacheSize {
		t.Errorf("cache size=%d limit=%d", st.CacheSize, st.CacheLimit)
	}
	if st.DurableSize != 1 {
		t.Errorf("durable size = %d", st.DurableSize)
	}
	if st.HitRate != 0.6667 {
		t.Errorf("hit rate = %v", st.HitRate)
	}
}

func TestGetStats_NoDurable(t *testing.T) {
	r, _ := newTestResolver(t, newTestRepository(), nil)
	if st := r.GetStats(context.Background()); st.DurableSize != -1 || st.HitRate != 0 {
		t.Errorf("got %+v", st)
	}
}

func TestClearCache(t *testing.T) {
	repo := newTestRepository()
	r, _ := newTestResolver(t, repo, nil)
	ctx := context.Background()

	r.Lookup(ctx, "YYZ")
	if n := r.ClearCache(); n != 1 {
		t.Errorf("ClearCache() = %d, want 1", n)
	}
	if r.memory.Len() != 0 {
		t.Fatalf("len = %d after clear", r.memory.Len())
	}

	calls := repo.calls.Load()
	r.Lookup(ctx, "YYZ")
	if repo.calls.Load() == calls {
		t.Error("lookup after clear should reach the repository")
	}
}

func TestClearDBCache(t *testing.T) {
	durable := newFakeDurable()
	durable.entries["old:metro"] = gormModels.LocationLookupCache{Query: "old:metro", LastAccessed: testNow.Add(-40 * 24 * time.Hour)}
	durable.entries["recent:metro"] = gormModels.LocationLookupCache{Query: "recent:metro", LastAccessed: testNow.Add(-24 * time.Hour)}
	r, _ := newTestResolver(t, newTestRepository(), durable)

	n, err := r.ClearDBCache(context.Background(), 0)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("deleted %d, want 1", n)
	}
	if want := testNow.Add(-30 * 24 * time.Hour); !durable.cutoff.Equal(want) {
		t.Errorf("cutoff = %v, want %v", durable.cutoff, want)
	}

	n, _ = r.ClearDBCache(context.Background(), 1)
	if n != 0 {
		t.Errorf("deleted %d, want 0 (entry is exactly one day old)", n)
	}
}

func TestClearDBCache_NoDurable(t *testing.T) {
	r, _ := newTestResolver(t, newTestRepository(), nil)
	if n, err := r.ClearDBCache(context.Background(), 7); n != 0 || err != nil {
		t.Errorf("got %d, %v", n, err)
	}
}

func TestLookup_Concurrent(t *testing.T) {
	r, sink := newTestResolver(t, newTestRepository(), newFakeDurable(), WithConfig(Config{MemoryCacheSize: 4}))
	queries := []string{"YYZ", "NYC", "toronto", "london", "JFK", "vancouver", "torontp", "pearson"}

	var wg sync.WaitGroup
	for g := 0; g < 16; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				q := queries[(g+i)%len(queries)]
				if _, err := r.Lookup(context.Background(), q); err != nil {
					t.Errorf("%s: %v", q, err)
					return
				}
			}
		}(g)
	}
	wg.Wait()

	if r.memory.Len() > 4 {
		t.Errorf("memory cache grew to %d", r.memory.Len())
	}
	st := r.GetStats(context.Background())
	var total int64
	for _, n := range st.Hits {
		total += n
	}
	if total != 16*50 {
		t.Errorf("hits = %d, want %d", total, 16*50)
	}
	if sink.Count(CounterMisses) != 0 {
		t.Errorf("unexpected misses: %d", sink.Count(CounterMisses))
	}
}

func TestNewLocationResolver_RequiresDependencies(t *testing.T) {
	if _, err := NewLocationResolver(nil, nil, metrics.NewLookupCounters(nil)); err == nil {
		t.Error("expected error without repository")
	}
	if _, err := NewLocationResolver(newTestRepository(), nil, nil); err == nil {
		t.Error("expected error without metrics sink")
	}
}

func TestBuildLookupOptions(t *testing.T) {
	tests := []struct {
		opts []LookupOption
		want LookupOptions
	}{
		{nil, LookupOptions{PreferMetro: true, Fuzzy: true, MaxResults: 5}},
		{[]LookupOption{WithMaxResults(0)}, LookupOptions{PreferMetro: true, Fuzzy: true, MaxResults: 1}},
		{[]LookupOption{WithMaxResults(50)}, LookupOptions{PreferMetro: true, Fuzzy: true, MaxResults: 5}},
		{[]LookupOption{WithPreferMetro(false), WithFuzzy(false), WithMaxResults(3)}, LookupOptions{MaxResults: 3}},
	}
	for i, tt := range tests {
		t.Run(fmt.Sprint(i), func(t *testing.T) {
			if got := buildLookupOptions(tt.opts); got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}
