package extraction

import "regexp"

var (
	totalKeywords = regexp.MustCompile(`(?i)total|المجموع|الإجمالي`)
	bareNumber    = regexp.MustCompile(`[\d,]+(?:\.\d{2})?`)
)

// resolveTotal finds the receipt's declared total. Totals are printed at
// the bottom, so lines are scanned in reverse for a total keyword with an
// adjacent number; the first hit wins. When no keyword line carries a
// number, the largest parseable price token anywhere in the text is taken
// as the total. Returns nil only when the text has no numeric tokens at all.
func resolveTotal(lines []string, text string) *float64 {
	for i := len(lines) - 1; i >= 0; i-- {
		line := lines[i]
		if !totalKeywords.MatchString(line) {
			continue
		}
		if m := bareNumber.FindString(line); m != "" {
			if total, err := parseAmount(m); err == nil {
				return &total
			}
		}
	}

	// fall back to the largest price on the receipt
	var max *float64
	for _, token := range tokenizePrices(text) {
		v, err := parseAmount(token)
		if err != nil {
			continue
		}
		if max == nil || v > *max {
			value := v
			max = &value
		}
	}
	return max
}
