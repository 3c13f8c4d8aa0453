package resolver

import (
	"regexp"

	"infinite-experiment/wayfinder/internal/textsim"
)

// maxQueryRunes bounds the input so fuzzy scoring stays cheap
const maxQueryRunes = 256

var iataPattern = regexp.MustCompile(`^[a-z]{3}$`)

// NormalizeQuery canonicalizes raw user input with textsim.Key after capping
// its length. Stored names are keyed the same way, so exact-name matching
// ignores case and accents.
func NormalizeQuery(raw string) string {
	if r := []rune(raw); len(r) > maxQueryRunes {
		raw = string(r[:maxQueryRunes])
	}

	return textsim.Key(raw)
}

func cacheKey(normalized string, preferMetro bool) string {
	if preferMetro {
		return normalized + ":metro"
	}
	return normalized + ":airport"
}
