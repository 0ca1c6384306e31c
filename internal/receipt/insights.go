package receipt

import (
	"fmt"
	"time"

	"github.com/husseinallaw/receiptvault-app/internal/insights"
)

// SpendingSource exposes stored receipts as insight summaries, implementing
// insights.Source over the receipt store
type SpendingSource struct {
	db DB
}

// NewSpendingSource creates a new SpendingSource
func NewSpendingSource(db DB) *SpendingSource {
	return &SpendingSource{db: db}
}

// ReceiptsBetween returns summaries of receipts whose transaction date
// falls in [from, to). Receipts without an extracted date fall back to
// their creation time.
func (s *SpendingSource) ReceiptsBetween(from, to time.Time) ([]insights.ReceiptSummary, error) {
	receipts, err := s.db.ListReceipts()
	if err != nil {
		return nil, fmt.Errorf("listing receipts: %w", err)
	}

	summaries := make([]insights.ReceiptSummary, 0, len(receipts))
	for _, r := range receipts {
		date := r.CreatedAt
		if r.Date != nil {
			if d, err := time.Parse("2006-01-02", *r.Date); err == nil {
				date = d
			}
		}
		if date.Before(from) || !date.Before(to) {
			continue
		}

		summary := insights.ReceiptSummary{Date: date}
		if r.StoreID != nil {
			summary.StoreID = *r.StoreID
		}
		if r.TotalLBP != nil {
			summary.TotalLBP = *r.TotalLBP
		}
		if r.TotalUSD != nil {
			summary.TotalUSD = *r.TotalUSD
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}
