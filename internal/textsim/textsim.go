// Package textsim scores how alike two short location strings are. Trigram
// similarity follows PostgreSQL's pg_trgm definition so results line up with
// what an operator sees running similarity() by hand; an edit-distance ratio
// covers transposition typos that trigrams punish too hard.
package textsim

import (
	"strings"
	"unicode"

	"github.com/agnivade/levenshtein"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// minEditRunes is the shortest input the edit-distance ratio is applied to.
// Below it a single edit swings the ratio too far to mean anything.
const minEditRunes = 5

var (
	stripMarks      = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	leadingPrefixes = []string{"the ", "from ", "to "}
)

// Fold lower-cases s, strips diacritics and collapses whitespace runs.
func Fold(s string) string {
	folded, _, err := transform.String(stripMarks, strings.ToLower(s))
	if err != nil {
		folded = strings.ToLower(s)
	}
	return strings.Join(strings.Fields(folded), " ")
}

// Key is the exact-match form of a location string: folded, then a trailing
// " city" and a trailing " airport" are removed, then one leading "the ",
// "from " or "to ". Stored names and user queries both go through it.
func Key(s string) string {
	k := Fold(s)
	k = strings.TrimSuffix(k, " city")
	k = strings.TrimSuffix(k, " airport")
	for _, prefix := range leadingPrefixes {
		if strings.HasPrefix(k, prefix) {
			k = strings.TrimPrefix(k, prefix)
			break
		}
	}
	return strings.TrimSpace(k)
}

// Trigrams returns the pg_trgm trigram set of s: every alphanumeric word is
// padded with two leading spaces and one trailing space before slicing.
func Trigrams(s string) map[string]struct{} {
	set := make(map[string]struct{})
	words := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, w := range words {
		padded := []rune("  " + w + " ")
		for i := 0; i+3 <= len(padded); i++ {
			set[string(padded[i:i+3])] = struct{}{}
		}
	}
	return set
}

// Trigram returns |A∩B| / |A∪B| over the trigram sets of a and b.
func Trigram(a, b string) float64 {
	ta, tb := Trigrams(a), Trigrams(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}
	shared := 0
	for g := range ta {
		if _, ok := tb[g]; ok {
			shared++
		}
	}
	union := len(ta) + len(tb) - shared
	return float64(shared) / float64(union)
}

// EditRatio returns 1 - distance/maxLen over runes, or 0 when either input is
// shorter than minEditRunes.
func EditRatio(a, b string) float64 {
	la, lb := len([]rune(a)), len([]rune(b))
	if la < minEditRunes || lb < minEditRunes {
		return 0
	}
	longest := la
	if lb > longest {
		longest = lb
	}
	dist := levenshtein.ComputeDistance(a, b)
	return 1 - float64(dist)/float64(longest)
}

// Similarity is the better of the trigram and edit-distance scores, in [0,1].
// Both inputs are expected to be folded already.
func Similarity(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return 1
	}
	tri := Trigram(a, b)
	edit := EditRatio(a, b)
	if edit > tri {
		return edit
	}
	return tri
}
