package warranty

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.etcd.io/bbolt"
)

const bucketName = "warranties"

// ErrNotFound is returned when no warranty exists for an ID
var ErrNotFound = errors.New("warranty not found")

// DB defines the interface for database operations
type DB interface {
	// SaveWarranty inserts or replaces a warranty
	SaveWarranty(w *Warranty) error

	// GetWarranty retrieves a warranty by ID
	GetWarranty(id string) (*Warranty, error)

	// ListWarranties returns all warranties
	ListWarranties() ([]*Warranty, error)

	// DeleteWarranty removes a warranty from the database
	DeleteWarranty(id string) error

	// Close closes the database connection
	Close() error
}

// BoltDB implements the DB interface using BoltDB
type BoltDB struct {
	db *bbolt.DB
}

// NewBoltDB creates a new BoltDB instance
func NewBoltDB(path string) (*BoltDB, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening boltdb: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketName))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating buckets: %w", err)
	}

	return &BoltDB{db: db}, nil
}

// SaveWarranty saves a warranty to the database
func (b *BoltDB) SaveWarranty(w *Warranty) error {
	if w.ID == "" {
		return fmt.Errorf("warranty id is required")
	}
	return b.db.Update(func(tx *bbolt.Tx) error {
		data, err := json.Marshal(w)
		if err != nil {
			return fmt.Errorf("marshaling warranty: %w", err)
		}
		return tx.Bucket([]byte(bucketName)).Put([]byte(w.ID), data)
	})
}

// GetWarranty retrieves a warranty by ID
func (b *BoltDB) GetWarranty(id string) (*Warranty, error) {
	var w *Warranty
	err := b.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket([]byte(bucketName)).Get([]byte(id))
		if data == nil {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return json.Unmarshal(data, &w)
	})
	if err != nil {
		return nil, err
	}
	return w, nil
}

// ListWarranties returns all warranties in key order
func (b *BoltDB) ListWarranties() ([]*Warranty, error) {
	warranties := make([]*Warranty, 0)
	err := b.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(bucketName)).ForEach(func(k, v []byte) error {
			var w Warranty
			if err := json.Unmarshal(v, &w); err != nil {
				return fmt.Errorf("unmarshaling warranty %s: %w", k, err)
			}
			warranties = append(warranties, &w)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return warranties, nil
}

// DeleteWarranty removes a warranty from the database; deleting a missing ID is not an error
func (b *BoltDB) DeleteWarranty(id string) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(bucketName)).Delete([]byte(id))
	})
}

// Close closes the database connection
func (b *BoltDB) Close() error {
	return b.db.Close()
}
