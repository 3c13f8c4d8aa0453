package resolver

import (
	"math"
	"sort"
)

const (
	// ambiguityWindow is the raw confidence gap below which a runner-up is
	// reported as an alternative
	ambiguityWindow = 0.1

	// gapEpsilon absorbs float error so a gap of exactly 0.1 (0.95 - 0.85)
	// lands outside the window
	gapEpsilon = 1e-9

	MaxAlternatives = 5
)

// rankCandidates dedupes by (type, code) keeping the highest confidence and
// sorts by confidence desc, metro before airport, passengers desc, code asc.
func rankCandidates(cands []candidate) []candidate {
	best := make(map[string]int, len(cands))
	ranked := make([]candidate, 0, len(cands))
	for _, c := range cands {
		key := matchKey(c.Match)
		if i, ok := best[key]; ok {
			if c.Confidence > ranked[i].Confidence {
				ranked[i] = c
			}
			continue
		}
		best[key] = len(ranked)
		ranked = append(ranked, c)
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.Confidence != b.Confidence {
			return a.Confidence > b.Confidence
		}
		if a.Match.Type() != b.Match.Type() {
			return a.Match.Type() == LocationTypeMetro
		}
		if pa, pb := a.Match.Passengers(), b.Match.Passengers(); pa != pb {
			return pa > pb
		}
		return a.Match.Code() < b.Match.Code()
	})
	return ranked
}

// selectResult picks the winner of an already ranked list and attaches the
// runners-up within the ambiguity window. Returns nil for an empty list.
func selectResult(ranked []candidate, maxResults int, source Source) *LookupResult {
	if len(ranked) == 0 {
		return nil
	}

	limit := maxResults
	if limit <= 0 || limit > MaxAlternatives {
		limit = MaxAlternatives
	}

	winner := ranked[0]
	res := resultFromMatch(winner.Match, winner.Confidence, source)

	for _, c := range ranked[1:] {
		if len(res.Alternatives) >= limit {
			break
		}
		if winner.Confidence-c.Confidence >= ambiguityWindow-gapEpsilon {
			// ranked is sorted, nothing further can qualify
			break
		}
		res.Alternatives = append(res.Alternatives, alternativeFromMatch(c.Match, c.Confidence))
	}
	return res
}

func resultFromMatch(m LocationMatch, confidence float64, source Source) *LookupResult {
	return &LookupResult{
		Type:       m.Type(),
		IATACode:   m.Code(),
		Name:       m.Name(),
		City:       m.City(),
		Country:    m.Country(),
		Confidence: roundConfidence(confidence),
		Source:     source,
		LocationID: m.ID(),
	}
}

func alternativeFromMatch(m LocationMatch, confidence float64) Alternative {
	return Alternative{
		IATACode:   m.Code(),
		Name:       m.Name(),
		City:       m.City(),
		Country:    m.Country(),
		Type:       m.Type(),
		Confidence: roundConfidence(confidence),
	}
}

func roundConfidence(c float64) float64 {
	return float64(hundredths(c)) / 100
}

func hundredths(c float64) int {
	if c < 0 {
		c = 0
	}
	if c > 1 {
		c = 1
	}
	return int(math.Round(c * 100))
}

// fuzzyConfidence maps similarity to confidence as min(1, sim^0.8)
func fuzzyConfidence(similarity float64) float64 {
	if similarity <= 0 {
		return 0
	}
	return math.Min(1, math.Pow(similarity, 0.8))
}
