package priceindex

import (
	"encoding/json"
	"fmt"
	"time"

	"go.etcd.io/bbolt"
)

const bucketName = "price_index"

// Index defines the interface for price index persistence
type Index interface {
	// Record merges a price observation into the product's index document
	// and persists the result, returning the updated entry
	Record(productID string, obs Observation) (*Entry, error)

	// Get retrieves a product's index entry, or nil if none exists yet
	Get(productID string) (*Entry, error)
}

// BoltIndex implements the Index interface using BoltDB. The whole
// read-modify-write of Record runs inside a single update transaction, so
// concurrent observations for the same product are applied one at a time
// in arrival order and no update is lost.
type BoltIndex struct {
	db  *bbolt.DB
	now func() time.Time
}

// NewBoltIndex creates a price index store on a shared bolt database,
// creating its bucket if needed. The caller owns the database handle.
func NewBoltIndex(db *bbolt.DB) (*BoltIndex, error) {
	err := db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketName))
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("creating bucket: %w", err)
	}
	return &BoltIndex{db: db, now: time.Now}, nil
}

// Record merges a price observation into the product's index document
func (b *BoltIndex) Record(productID string, obs Observation) (*Entry, error) {
	var updated *Entry
	err := b.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(bucketName))

		var current *Entry
		if data := bucket.Get([]byte(productID)); data != nil {
			if err := json.Unmarshal(data, &current); err != nil {
				return fmt.Errorf("unmarshaling index entry: %w", err)
			}
		}

		updated = Apply(current, productID, obs, b.now())

		data, err := json.Marshal(updated)
		if err != nil {
			return fmt.Errorf("marshaling index entry: %w", err)
		}
		return bucket.Put([]byte(productID), data)
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Get retrieves a product's index entry
func (b *BoltIndex) Get(productID string) (*Entry, error) {
	var entry *Entry
	err := b.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(bucketName))
		data := bucket.Get([]byte(productID))
		if data == nil {
			return nil
		}
		return json.Unmarshal(data, &entry)
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}
