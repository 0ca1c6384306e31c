// Package insights derives periodic spending summaries from stored
// receipts: per-window totals, top stores by spend, and the change versus
// the previous window.
package insights

import "time"

// Direction classifies spending movement between two periods
type Direction string

const (
	DirectionUp     Direction = "up"
	DirectionDown   Direction = "down"
	DirectionStable Direction = "stable"
)

// changeThreshold is the percent change below which spending counts as stable
const changeThreshold = 5.0

// topStoreLimit caps how many stores an insight ranks
const topStoreLimit = 5

// StoreSpend is one store's total spend within an insight period
type StoreSpend struct {
	StoreID string  `json:"store_id"`
	Amount  float64 `json:"amount"`
}

// Comparison relates a period's spending to the previous period
type Comparison struct {
	PercentChange float64   `json:"percent_change"`
	Direction     Direction `json:"direction"`
}

// Insight is one generated spending summary, keyed by its period
type Insight struct {
	Period               string       `json:"period"` // "YYYY-MM-DD_YYYY-MM-DD"
	TotalSpentLBP        float64      `json:"total_spent_lbp"`
	TotalSpentUSD        float64      `json:"total_spent_usd"`
	ReceiptCount         int          `json:"receipt_count"`
	TopStores            []StoreSpend `json:"top_stores"`
	ComparedToLastPeriod Comparison   `json:"compared_to_last_period"`
	GeneratedAt          time.Time    `json:"generated_at"`
}

// ReceiptSummary is the slice of a stored receipt that insight generation
// needs; the adapter over the receipt store maps into it
type ReceiptSummary struct {
	StoreID  string
	TotalLBP float64
	TotalUSD float64
	Date     time.Time
}

// Source provides receipt summaries for a time window
type Source interface {
	ReceiptsBetween(from, to time.Time) ([]ReceiptSummary, error)
}
