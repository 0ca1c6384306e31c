package priceindex

import "time"

// Apply merges one price observation into a product's index document and
// returns the document to persist. A nil entry means no index exists yet
// for the product and a fresh one is created. Apply is pure: it never
// mutates its input and performs no I/O, so the caller decides transaction
// boundaries (see BoltIndex.Record).
//
// Lowest and average compare and mix current prices numerically even when
// store currencies differ. That mirrors the observed production behavior
// and is a known simplification, not a target for silent fixing.
func Apply(entry *Entry, productID string, obs Observation, now time.Time) *Entry {
	if entry == nil {
		return &Entry{
			ProductID: productID,
			Stores: map[string]StoreRecord{
				obs.StoreID: {
					CurrentPrice: obs.Price,
					Currency:     obs.Currency,
					PriceHistory: []HistoryPoint{{Price: obs.Price, Date: obs.RecordedAt, Currency: obs.Currency}},
					Trend:        TrendStable,
					LastUpdated:  obs.RecordedAt,
				},
			},
			LowestPrice:  LowestPrice{StoreID: obs.StoreID, Price: obs.Price, Currency: obs.Currency},
			AveragePrice: obs.Price,
			UpdatedAt:    now,
		}
	}

	stores := make(map[string]StoreRecord, len(entry.Stores)+1)
	for id, rec := range entry.Stores {
		stores[id] = rec
	}

	prior := stores[obs.StoreID]
	history := append(
		[]HistoryPoint{{Price: obs.Price, Date: obs.RecordedAt, Currency: obs.Currency}},
		prior.PriceHistory...,
	)
	if len(history) > maxHistory {
		history = history[:maxHistory]
	}

	stores[obs.StoreID] = StoreRecord{
		CurrentPrice: obs.Price,
		Currency:     obs.Currency,
		PriceHistory: history,
		Trend:        trendFor(history),
		LastUpdated:  obs.RecordedAt,
	}

	// lowest price across all stores, seeded with the new observation
	lowest := LowestPrice{StoreID: obs.StoreID, Price: obs.Price, Currency: obs.Currency}
	var sum float64
	for id, rec := range stores {
		if rec.CurrentPrice < lowest.Price {
			lowest = LowestPrice{StoreID: id, Price: rec.CurrentPrice, Currency: rec.Currency}
		}
		sum += rec.CurrentPrice
	}

	return &Entry{
		ProductID:    productID,
		Stores:       stores,
		LowestPrice:  lowest,
		AveragePrice: sum / float64(len(stores)),
		UpdatedAt:    now,
	}
}

// trendFor classifies the latest price movement from the two newest history
// points using a 5% relative threshold. The comparison is strict: a move of
// exactly 5% is stable. Fewer than two points means no signal yet.
func trendFor(history []HistoryPoint) Trend {
	if len(history) < 2 {
		return TrendStable
	}
	diff := history[0].Price - history[1].Price
	threshold := history[1].Price * 0.05
	switch {
	case diff > threshold:
		return TrendUp
	case diff < -threshold:
		return TrendDown
	default:
		return TrendStable
	}
}
