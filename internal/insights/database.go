package insights

import (
	"encoding/json"
	"fmt"

	"go.etcd.io/bbolt"
)

const bucketName = "insights"

// DB defines the interface for insight persistence
type DB interface {
	// SaveInsight stores an insight keyed by its period
	SaveInsight(insight *Insight) error

	// ListInsights returns all stored insights
	ListInsights() ([]*Insight, error)
}

// BoltDB implements the DB interface using BoltDB
type BoltDB struct {
	db *bbolt.DB
}

// NewBoltDB creates an insight store on a shared bolt database
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

// SaveInsight stores an insight keyed by its period, overwriting any
// earlier generation for the same period
func (b *BoltDB) SaveInsight(insight *Insight) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(bucketName))
		data, err := json.Marshal(insight)
		if err != nil {
			return fmt.Errorf("marshaling insight: %w", err)
		}
		return bucket.Put([]byte(insight.Period), data)
	})
}

// ListInsights returns all stored insights
func (b *BoltDB) ListInsights() ([]*Insight, error) {
	insights := make([]*Insight, 0)
	err := b.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(bucketName))
		return bucket.ForEach(func(k, v []byte) error {
			var insight Insight
			if err := json.Unmarshal(v, &insight); err != nil {
				return fmt.Errorf("unmarshaling insight: %w", err)
			}
			insights = append(insights, &insight)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return insights, nil
}
