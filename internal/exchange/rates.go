// Package exchange keeps USD→LBP exchange rates synced from configured
// sources. Rates inform the UI only; the price index deliberately performs
// no currency conversion.
package exchange

import (
	"context"
	"time"
)

// Rate is one stored exchange rate quote. Only the most recently synced
// quotes are active; older ones are kept for history with IsActive false.
type Rate struct {
	ID        string    `json:"id"`
	Date      time.Time `json:"date"`
	Source    string    `json:"source"`
	RateType  string    `json:"rate_type"`
	UsdToLbp  float64   `json:"usd_to_lbp"`
	LbpToUsd  float64   `json:"lbp_to_usd"`
	FetchedAt time.Time `json:"fetched_at"`
	IsActive  bool      `json:"is_active"`
}

// Quote is a raw rate as reported by a source
type Quote struct {
	Source   string
	RateType string
	UsdToLbp float64
}

// Source fetches current quotes from an upstream rate provider
type Source interface {
	Fetch(ctx context.Context) ([]Quote, error)
}

// StaticSource serves fixed quotes. It stands in for the market-rate APIs
// (parallel market, Sayrafa) until real upstreams are wired.
type StaticSource struct {
	Quotes []Quote
}

// DefaultSource returns a StaticSource with the two tracked Lebanese rates
func DefaultSource() *StaticSource {
	return &StaticSource{Quotes: []Quote{
		{Source: "black_market", RateType: "mid", UsdToLbp: 89500},
		{Source: "sayrafa", RateType: "mid", UsdToLbp: 89500},
	}}
}

// Fetch returns the configured quotes
func (s *StaticSource) Fetch(_ context.Context) ([]Quote, error) {
	return s.Quotes, nil
}
