package insights

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"time"
)

const week = 7 * 24 * time.Hour

// Service generates and stores spending insights
type Service struct {
	db     DB
	source Source
	now    func() time.Time
}

// NewService creates a new Service
func NewService(db DB, source Source) *Service {
	return &Service{db: db, source: source, now: time.Now}
}

// NewServiceWithDeps creates a new Service with a custom time source for testing
func NewServiceWithDeps(db DB, source Source, now func() time.Time) *Service {
	return &Service{db: db, source: source, now: now}
}

// Generate computes the insight for the week ending now, compares it to the
// week before, and stores it keyed by period
func (s *Service) Generate() (*Insight, error) {
	now := s.now()
	weekAgo := now.Add(-week)
	twoWeeksAgo := now.Add(-2 * week)

	current, err := s.source.ReceiptsBetween(weekAgo, now)
	if err != nil {
		return nil, fmt.Errorf("fetching current period receipts: %w", err)
	}
	previous, err := s.source.ReceiptsBetween(twoWeeksAgo, weekAgo)
	if err != nil {
		return nil, fmt.Errorf("fetching previous period receipts: %w", err)
	}

	insight := compute(current, previous, weekAgo, now)
	insight.GeneratedAt = now

	if err := s.db.SaveInsight(insight); err != nil {
		return nil, fmt.Errorf("saving insight: %w", err)
	}

	slog.Info("Insight generated",
		"period", insight.Period,
		"receipts", insight.ReceiptCount,
		"direction", insight.ComparedToLastPeriod.Direction,
	)
	return insight, nil
}

// List returns all stored insights
func (s *Service) List() ([]*Insight, error) {
	return s.db.ListInsights()
}

// Run generates insights on every tick until the context is canceled
func (s *Service) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.Generate(); err != nil {
				slog.Error("Insight generation failed", "error", err)
			}
		}
	}
}

// compute builds the insight for one window against its predecessor
func compute(current, previous []ReceiptSummary, from, to time.Time) *Insight {
	var totalLBP, totalUSD float64
	storeSpending := make(map[string]float64)

	for _, r := range current {
		totalLBP += r.TotalLBP
		totalUSD += r.TotalUSD

		storeID := r.StoreID
		if storeID == "" {
			storeID = "unknown"
		}
		storeSpending[storeID] += amountOf(r)
	}

	var prevTotal float64
	for _, r := range previous {
		prevTotal += amountOf(r)
	}

	currentTotal := totalLBP
	if currentTotal == 0 {
		currentTotal = totalUSD
	}

	comparison := Comparison{Direction: DirectionStable}
	if prevTotal > 0 {
		change := (currentTotal - prevTotal) / prevTotal * 100
		comparison.PercentChange = math.Round(change*10) / 10
		if change > changeThreshold {
			comparison.Direction = DirectionUp
		} else if change < -changeThreshold {
			comparison.Direction = DirectionDown
		}
	}

	topStores := make([]StoreSpend, 0, len(storeSpending))
	for id, amount := range storeSpending {
		topStores = append(topStores, StoreSpend{StoreID: id, Amount: amount})
	}
	sort.Slice(topStores, func(i, j int) bool {
		if topStores[i].Amount != topStores[j].Amount {
			return topStores[i].Amount > topStores[j].Amount
		}
		return topStores[i].StoreID < topStores[j].StoreID
	})
	if len(topStores) > topStoreLimit {
		topStores = topStores[:topStoreLimit]
	}

	return &Insight{
		Period:               fmt.Sprintf("%s_%s", from.Format("2006-01-02"), to.Format("2006-01-02")),
		TotalSpentLBP:        totalLBP,
		TotalSpentUSD:        totalUSD,
		ReceiptCount:         len(current),
		TopStores:            topStores,
		ComparedToLastPeriod: comparison,
	}
}

// amountOf is a receipt's spend in whichever currency carries its total
func amountOf(r ReceiptSummary) float64 {
	if r.TotalLBP != 0 {
		return r.TotalLBP
	}
	return r.TotalUSD
}
