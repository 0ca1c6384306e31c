package exchange

import (
	"encoding/json"
	"fmt"

	"go.etcd.io/bbolt"
)

const bucketName = "exchange_rates"

// DB defines the interface for exchange rate persistence
type DB interface {
	// ReplaceActive deactivates all currently active rates and stores the
	// given rates as the new active set, atomically
	ReplaceActive(rates []*Rate) error

	// Active returns all currently active rates
	Active() ([]*Rate, error)
}

// BoltDB implements the DB interface using BoltDB
type BoltDB struct {
	db *bbolt.DB
}

// NewBoltDB creates an exchange rate store on a shared bolt database
func NewBoltDB(db *bbolt.DB) (*BoltDB, error) {
	err := db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketName))
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("creating bucket: %w", err)
	}
	return &BoltDB{db: db}, nil
}

// ReplaceActive deactivates prior active rates and stores the new set in
// one transaction, so readers never observe a window with no active rates
func (b *BoltDB) ReplaceActive(rates []*Rate) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(bucketName))

		// Collect first: the bucket must not be modified during ForEach
		var actives []*Rate
		err := bucket.ForEach(func(k, v []byte) error {
			var rate Rate
			if err := json.Unmarshal(v, &rate); err != nil {
				return fmt.Errorf("unmarshaling rate: %w", err)
			}
			if rate.IsActive {
				actives = append(actives, &rate)
			}
			return nil
		})
		if err != nil {
			return err
		}

		for _, rate := range actives {
			rate.IsActive = false
			data, err := json.Marshal(rate)
			if err != nil {
				return fmt.Errorf("marshaling rate: %w", err)
			}
			if err := bucket.Put([]byte(rate.ID), data); err != nil {
				return err
			}
		}

		for _, rate := range rates {
			data, err := json.Marshal(rate)
			if err != nil {
				return fmt.Errorf("marshaling rate: %w", err)
			}
			if err := bucket.Put([]byte(rate.ID), data); err != nil {
				return err
			}
		}
		return nil
	})
}

// Active returns all currently active rates
func (b *BoltDB) Active() ([]*Rate, error) {
	rates := make([]*Rate, 0)
	err := b.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(bucketName))
		return bucket.ForEach(func(k, v []byte) error {
			var rate Rate
			if err := json.Unmarshal(v, &rate); err != nil {
				return fmt.Errorf("unmarshaling rate: %w", err)
			}
			if rate.IsActive {
				rates = append(rates, &rate)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return rates, nil
}
