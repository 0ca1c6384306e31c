package extraction

import (
	"fmt"
	"regexp"
)

// datePatterns is tried in order against the whole text; the first pattern
// that matches anywhere decides the result, even when a later pattern would
// also have matched. No calendar validation is performed.
var datePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(\d{2})/(\d{2})/(\d{4})`), // DD/MM/YYYY
	regexp.MustCompile(`(\d{4})-(\d{2})-(\d{2})`), // YYYY-MM-DD
	regexp.MustCompile(`(\d{2})-(\d{2})-(\d{4})`), // DD-MM-YYYY
}

// extractDate finds the first date-like substring and normalizes it to
// YYYY-MM-DD. The captured group with four digits is taken as the year;
// returns nil when no pattern matches.
func extractDate(text string) *string {
	for _, pattern := range datePatterns {
		m := pattern.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		var date string
		if len(m[1]) == 4 {
			date = fmt.Sprintf("%s-%s-%s", m[1], m[2], m[3])
		} else if len(m[3]) == 4 {
			date = fmt.Sprintf("%s-%s-%s", m[3], m[2], m[1])
		} else {
			// first matching pattern wins even when it cannot be normalized
			return nil
		}
		return &date
	}
	return nil
}
