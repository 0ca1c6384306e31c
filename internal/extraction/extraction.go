// Package extraction turns raw receipt OCR text into a structured,
// currency-aware record. Every matcher is a pure function over the same
// text; a miss in one never blocks the others, and no matcher ever returns
// an error; absent fields stay nil.
package extraction

import "strings"

// Currency is the operating currency of a receipt
type Currency string

const (
	CurrencyLBP Currency = "LBP"
	CurrencyUSD Currency = "USD"
)

// Receipt is the structured result of extracting one OCR text blob.
// TotalLBP and TotalUSD are mutually exclusive: the detected currency
// decides which one carries the resolved total, the other stays nil.
type Receipt struct {
	StoreName  *string  `json:"storeName"`
	StoreID    *string  `json:"storeId"`
	Date       *string  `json:"date"` // ISO calendar date, YYYY-MM-DD
	Items      []Item   `json:"items"`
	TotalLBP   *float64 `json:"totalLBP"`
	TotalUSD   *float64 `json:"totalUSD"`
	Currency   Currency `json:"currency"`
	RawText    string   `json:"rawText"`
	Confidence float64  `json:"confidence"`
}

// Item is one best-effort line item. The pipeline detects candidate prices
// but does not reliably segment individual items, so Items is usually empty.
type Item struct {
	Name       string  `json:"name"`
	Quantity   float64 `json:"quantity"`
	UnitPrice  float64 `json:"unitPrice"`
	TotalPrice float64 `json:"totalPrice"`
	Confidence float64 `json:"confidence"`
}

// Extract runs every matcher against the OCR text and assembles the result.
// confidence is the receipt-level OCR confidence, computed separately from
// the provider result (see Score).
func Extract(text string, confidence float64) *Receipt {
	lines := splitLines(text)

	storeID, storeName := matchStore(text)
	date := extractDate(text)
	currency := detectCurrency(text)
	total := resolveTotal(lines, text)

	r := &Receipt{
		StoreName:  storeName,
		StoreID:    storeID,
		Date:       date,
		Items:      []Item{},
		Currency:   currency,
		RawText:    text,
		Confidence: confidence,
	}
	if total != nil {
		if currency == CurrencyUSD {
			r.TotalUSD = total
		} else {
			r.TotalLBP = total
		}
	}
	return r
}

// splitLines breaks the OCR text into trimmed, non-empty lines
func splitLines(text string) []string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
