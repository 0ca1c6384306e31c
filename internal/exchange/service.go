package exchange

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Service syncs exchange rates from a Source into the store
type Service struct {
	db     DB
	source Source
	now    func() time.Time
	newID  func() string
}

// NewService creates a new Service
func NewService(db DB, source Source) *Service {
	return &Service{
		db:     db,
		source: source,
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

// NewServiceWithDeps creates a new Service with custom time and ID sources for testing
func NewServiceWithDeps(db DB, source Source, now func() time.Time, newID func() string) *Service {
	return &Service{db: db, source: source, now: now, newID: newID}
}

// Sync fetches current quotes and replaces the active rate set
func (s *Service) Sync(ctx context.Context) error {
	quotes, err := s.source.Fetch(ctx)
	if err != nil {
		return fmt.Errorf("fetching quotes: %w", err)
	}

	now := s.now()
	rates := make([]*Rate, 0, len(quotes))
	for _, q := range quotes {
		rates = append(rates, &Rate{
			ID:        s.newID(),
			Date:      now,
			Source:    q.Source,
			RateType:  q.RateType,
			UsdToLbp:  q.UsdToLbp,
			LbpToUsd:  1 / q.UsdToLbp,
			FetchedAt: now,
			IsActive:  true,
		})
	}

	if err := s.db.ReplaceActive(rates); err != nil {
		return fmt.Errorf("storing rates: %w", err)
	}

	slog.Info("Exchange rates synced", "count", len(rates))
	return nil
}

// Active returns all currently active rates
func (s *Service) Active() ([]*Rate, error) {
	return s.db.Active()
}

// Run syncs immediately, then on every tick until the context is canceled
func (s *Service) Run(ctx context.Context, interval time.Duration) {
	if err := s.Sync(ctx); err != nil {
		slog.Error("Exchange rate sync failed", "error", err)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.Sync(ctx); err != nil {
				slog.Error("Exchange rate sync failed", "error", err)
			}
		}
	}
}
