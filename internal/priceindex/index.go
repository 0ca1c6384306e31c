// Package priceindex maintains the per-product cross-store price index:
// current price per store, bounded history, trend classification, global
// lowest price, and cross-store average.
package priceindex

import (
	"time"

	"github.com/husseinallaw/receiptvault-app/internal/extraction"
)

// Trend classifies a store's most recent price movement
type Trend string

const (
	TrendUp     Trend = "up"
	TrendDown   Trend = "down"
	TrendStable Trend = "stable"
)

// maxHistory bounds each store's price history; older points are evicted
const maxHistory = 30

// Observation is one newly reported price for a product at a store
type Observation struct {
	StoreID    string              `json:"storeId"`
	Price      float64             `json:"price"`
	Currency   extraction.Currency `json:"currency"`
	RecordedAt time.Time           `json:"recordedAt"`
}

// HistoryPoint is one recorded price in a store's history
type HistoryPoint struct {
	Price    float64             `json:"price"`
	Date     time.Time           `json:"date"`
	Currency extraction.Currency `json:"currency"`
}

// StoreRecord tracks one store's pricing for a product. PriceHistory is
// ordered most-recent-first and holds at most 30 points.
type StoreRecord struct {
	CurrentPrice float64             `json:"currentPrice"`
	Currency     extraction.Currency `json:"currency"`
	PriceHistory []HistoryPoint      `json:"priceHistory"`
	Trend        Trend               `json:"trend"`
	LastUpdated  time.Time           `json:"lastUpdated"`
}

// LowestPrice is the minimum current price across all stores at last update
type LowestPrice struct {
	StoreID  string              `json:"storeId"`
	Price    float64             `json:"price"`
	Currency extraction.Currency `json:"currency"`
}

// Entry is the full index document for one product. It is the sole
// authority for the product's current, lowest, and average prices.
type Entry struct {
	ProductID    string                 `json:"productId"`
	Stores       map[string]StoreRecord `json:"stores"`
	LowestPrice  LowestPrice            `json:"lowestPrice"`
	AveragePrice float64                `json:"averagePrice"`
	UpdatedAt    time.Time              `json:"updatedAt"`
}
