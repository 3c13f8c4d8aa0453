package resolver

import (
	"context"
	"fmt"
	"math"

	gormModels "infinite-experiment/wayfinder/internal/models/gorm"
)

const (
	MinConfidence          = 0.5
	PromotedConfidence     = 0.95
	CityMatchConfidence    = 0.95
	DefaultAliasConfidence = 0.9
	FuzzySimilarityFloor   = 0.3
)

type lookupRequest struct {
	query string
	opts  LookupOptions
}

// matchStrategy produces scored candidates for a normalized query. An empty
// result lets the next strategy run.
type matchStrategy struct {
	name string
	run  func(ctx context.Context, req lookupRequest) ([]candidate, error)
}

func (s *LocationResolver) strategies(fuzzy bool) []matchStrategy {
	list := []matchStrategy{
		{name: "exact_code", run: s.matchExactCode},
		{name: "exact_name", run: s.matchExactName},
		{name: "alias", run: s.matchAlias},
	}
	if fuzzy {
		list = append(list, matchStrategy{name: "fuzzy", run: s.matchFuzzy})
	}
	return list
}

// firstMatch runs strategies in order and returns the first non-empty
// candidate set that survives the confidence floor.
func firstMatch(ctx context.Context, strategies []matchStrategy, req lookupRequest) ([]candidate, error) {
	for _, st := range strategies {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		cands, err := st.run(ctx, req)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", st.name, err)
		}

		kept := cands[:0]
		for _, c := range cands {
			if c.Confidence >= MinConfidence {
				c.Strategy = st.name
				kept = append(kept, c)
			}
		}
		if len(kept) > 0 {
			return kept, nil
		}
	}
	return nil, nil
}

func (s *LocationResolver) matchExactCode(ctx context.Context, req lookupRequest) ([]candidate, error) {
	if !iataPattern.MatchString(req.query) {
		return nil, nil
	}

	if req.opts.PreferMetro {
		metro, err := s.repo.FindMetroByCode(ctx, req.query)
		if err != nil {
			return nil, err
		}
		if metro != nil {
			return []candidate{{Match: MetroMatch{Metro: metro}, Confidence: 1.0}}, nil
		}
	}

	airport, err := s.repo.FindAirportByCode(ctx, req.query)
	if err != nil || airport == nil {
		return nil, err
	}

	p := newPromoter(s.repo, req.opts.PreferMetro)
	return p.airport(ctx, airport, 1.0)
}

func (s *LocationResolver) matchExactName(ctx context.Context, req lookupRequest) ([]candidate, error) {
	var cands []candidate

	if req.opts.PreferMetro {
		metros, err := s.repo.FindMetrosByName(ctx, req.query)
		if err != nil {
			return nil, err
		}
		for i := range metros {
			cands = append(cands, candidate{Match: MetroMatch{Metro: &metros[i]}, Confidence: 1.0})
		}
	}

	airports, err := s.repo.FindAirportsByName(ctx, req.query)
	if err != nil {
		return nil, err
	}

	p := newPromoter(s.repo, req.opts.PreferMetro)
	for i := range airports {
		a := &airports[i]
		conf := CityMatchConfidence
		if NormalizeQuery(a.Name) == req.query {
			conf = 1.0
		}
		promoted, err := p.airport(ctx, a, conf)
		if err != nil {
			return nil, err
		}
		cands = append(cands, promoted...)
	}
	return cands, nil
}

func (s *LocationResolver) matchAlias(ctx context.Context, req lookupRequest) ([]candidate, error) {
	aliases, err := s.repo.FindByAlias(ctx, req.query)
	if err != nil {
		return nil, err
	}

	p := newPromoter(s.repo, req.opts.PreferMetro)
	var cands []candidate
	for i := range aliases {
		conf := DefaultAliasConfidence
		if aliases[i].Confidence != nil {
			conf = *aliases[i].Confidence
		}
		airport := aliases[i].Airport
		promoted, err := p.airport(ctx, &airport, conf)
		if err != nil {
			return nil, err
		}
		cands = append(cands, promoted...)
	}
	return cands, nil
}

func (s *LocationResolver) matchFuzzy(ctx context.Context, req lookupRequest) ([]candidate, error) {
	hits, err := s.repo.FindFuzzy(ctx, req.query, FuzzySimilarityFloor, req.opts.MaxResults, req.opts.PreferMetro)
	if err != nil {
		return nil, err
	}

	p := newPromoter(s.repo, req.opts.PreferMetro)
	var cands []candidate
	for _, hit := range hits {
		conf := fuzzyConfidence(hit.Similarity)
		switch {
		case hit.Metro != nil:
			if req.opts.PreferMetro {
				cands = append(cands, candidate{Match: MetroMatch{Metro: hit.Metro}, Confidence: conf})
			}
		case hit.Airport != nil:
			promoted, err := p.airport(ctx, hit.Airport, conf)
			if err != nil {
				return nil, err
			}
			cands = append(cands, promoted...)
		}
	}
	return cands, nil
}

// promoter lifts airport candidates to their metro area when metros are
// preferred, remembering metros already fetched during one lookup.
type promoter struct {
	repo        Repository
	preferMetro bool
	metros      map[string]*gormModels.MetroArea
}

func newPromoter(repo Repository, preferMetro bool) *promoter {
	return &promoter{repo: repo, preferMetro: preferMetro, metros: make(map[string]*gormModels.MetroArea)}
}

// airport returns the candidates for an airport matched at conf. When the
// airport is promoted, the metro is scored min(conf, 0.95) and the airport is
// capped at the metro's score so the metro always ranks first.
func (p *promoter) airport(ctx context.Context, a *gormModels.Airport, conf float64) ([]candidate, error) {
	if !p.preferMetro || !a.InMetro() {
		return []candidate{{Match: AirportMatch{Airport: a}, Confidence: conf}}, nil
	}

	metro, ok := p.metros[*a.MetroAreaID]
	if !ok {
		var err error
		metro, err = p.repo.FindMetroForAirport(ctx, a.IATA)
		if err != nil {
			return nil, err
		}
		p.metros[*a.MetroAreaID] = metro
	}
	if metro == nil {
		return []candidate{{Match: AirportMatch{Airport: a}, Confidence: conf}}, nil
	}

	metroConf := math.Min(conf, PromotedConfidence)
	return []candidate{
		{Match: MetroMatch{Metro: metro}, Confidence: metroConf},
		{Match: AirportMatch{Airport: a}, Confidence: math.Min(conf, metroConf)},
	}, nil
}
