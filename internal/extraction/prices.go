package extraction

import (
	"regexp"
	"strconv"
	"strings"
)

// pricePattern matches a numeric token (thousands separators, optional
// two-digit fraction) with an optional trailing currency marker in either
// script.
var pricePattern = regexp.MustCompile(`(?i)([\d,]+(?:\.\d{2})?)\s*(LBP|L\.L\.|ل\.ل|USD|\$|دولار)?`)

// tokenizePrices returns every price-like substring in the text, in order
// of appearance. Tokens that do not parse as numbers are kept here and
// filtered by the caller.
func tokenizePrices(text string) []string {
	var tokens []string
	for _, m := range pricePattern.FindAllStringSubmatch(text, -1) {
		if m[1] != "" {
			tokens = append(tokens, m[1])
		}
	}
	return tokens
}

// parseAmount parses a price token after stripping thousands separators
func parseAmount(token string) (float64, error) {
	return strconv.ParseFloat(strings.ReplaceAll(token, ",", ""), 64)
}
