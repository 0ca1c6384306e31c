package extraction

import "regexp"

var (
	lbpMarkers = regexp.MustCompile(`(?i)LBP|L\.L\.|ل\.ل`)
	usdMarkers = regexp.MustCompile(`(?i)USD|\$`)
)

// detectCurrency decides the receipt's operating currency. USD wins only
// when a USD marker is present and no LBP marker is; in every other case
// (both markers, neither marker) the result is LBP, the market default.
// The asymmetry is intentional, not a bug.
func detectCurrency(text string) Currency {
	hasLBP := lbpMarkers.MatchString(text)
	hasUSD := usdMarkers.MatchString(text)
	if hasUSD && !hasLBP {
		return CurrencyUSD
	}
	return CurrencyLBP
}
