package receipt

import (
	"time"

	"github.com/husseinallaw/receiptvault-app/internal/extraction"
)

// Receipt statuses. A receipt extracted with high OCR confidence is
// processed; below the threshold it stays pending for manual review.
const (
	StatusProcessed = "processed"
	StatusPending   = "pending"
)

// confidenceThreshold gates automatic acceptance of extracted receipts
const confidenceThreshold = 0.8

// Receipt is a persisted receipt: the extraction result plus document
// identity and the stored source image. TotalLBP and TotalUSD are mutually
// exclusive; both nil means no total could be resolved.
type Receipt struct {
	ID          string              `json:"id"`
	StoreID     *string             `json:"store_id"`
	StoreName   string              `json:"store_name"`
	Date        *string             `json:"date"` // YYYY-MM-DD
	Items       []extraction.Item   `json:"items"`
	TotalLBP    *float64            `json:"total_lbp"`
	TotalUSD    *float64            `json:"total_usd"`
	Currency    extraction.Currency `json:"currency"`
	Status      string              `json:"status"`
	Confidence  float64             `json:"confidence"`
	RawText     string              `json:"raw_text"`
	Filename    string              `json:"filename"`
	ContentType string              `json:"content_type"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

// Total returns the resolved total in the receipt's operating currency,
// or nil when no total was found
func (r *Receipt) Total() *float64 {
	if r.Currency == extraction.CurrencyUSD {
		return r.TotalUSD
	}
	return r.TotalLBP
}
