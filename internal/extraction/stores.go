package extraction

import (
	"regexp"
	"strings"
	"unicode"
)

// storePattern pairs a canonical store identifier with a pattern matching
// its known name variants (Latin transliteration and Arabic).
type storePattern struct {
	id      string
	pattern *regexp.Regexp
}

// storeRegistry is an ordered priority list: the first pattern that matches
// anywhere in the text wins, regardless of where it appears. Order matters,
// so this must stay a slice, never a map.
var storeRegistry = []storePattern{
	{"spinneys", regexp.MustCompile(`(?i)spinneys|سبينيز`)},
	{"happy", regexp.MustCompile(`(?i)happy|هابي`)},
	{"al_makhazen", regexp.MustCompile(`(?i)al.?makhazen|المخازن`)},
	{"charcutier_aoun", regexp.MustCompile(`(?i)charcutier|aoun|عون`)},
	{"total", regexp.MustCompile(`(?i)total|توتال`)},
	{"medco", regexp.MustCompile(`(?i)medco|ميدكو`)},
}

// matchStore scans the registry in priority order and returns the first
// matching store's id and display name, or (nil, nil) when no known store
// appears in the text.
func matchStore(text string) (id *string, name *string) {
	for _, entry := range storeRegistry {
		if entry.pattern.MatchString(text) {
			storeID := entry.id
			display := displayName(entry.id)
			return &storeID, &display
		}
	}
	return nil, nil
}

// displayName turns a store id like "charcutier_aoun" into "Charcutier Aoun"
func displayName(id string) string {
	words := strings.Split(id, "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		runes := []rune(w)
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}
