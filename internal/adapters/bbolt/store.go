// Package bbolt implements ports.SnapshotStore using bbolt (embedded B+ tree).
// Each vault gets its own top-level bucket holding the last successfully built
// catalog. Writes are transactional: a crash mid-write cannot corrupt the
// previously committed snapshot.
package bbolt

import (
	"errors"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/corey/vlink/internal/ports"
)

// Bucket keys
var (
	keyCatalog = []byte("catalog")
)

// Store implements ports.SnapshotStore backed by bbolt.
type Store struct {
	db *bolt.DB
}

// NewStore opens (or creates) a bbolt database at the given path. A second
// process holding the file lock makes this fail after one second instead of
// blocking.
func NewStore(path string) (*Store, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("bbolt open: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying bbolt database.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveCatalog persists the snapshot for a vault, replacing any prior one.
func (s *Store) SaveCatalog(vaultID string, snap *ports.CatalogSnapshot) error {
	if snap == nil {
		return fmt.Errorf("nil catalog snapshot")
	}
	data, err := encodeSnapshot(snap)
	if err != nil {
		return fmt.Errorf("encode catalog: %w", err)
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		vb, err := tx.CreateBucketIfNotExists([]byte(vaultID))
		if err != nil {
			return err
		}
		return vb.Put(keyCatalog, data)
	})
}

// LoadCatalog retrieves the snapshot for a vault.
// Returns nil, nil if none exists (fresh vault).
func (s *Store) LoadCatalog(vaultID string) (*ports.CatalogSnapshot, error) {
	var data []byte

	err := s.db.View(func(tx *bolt.Tx) error {
		vb := tx.Bucket([]byte(vaultID))
		if vb == nil {
			return nil
		}
		// Copy bytes out of the transaction (bbolt slices are only valid within tx)
		if v := vb.Get(keyCatalog); v != nil {
			data = make([]byte, len(v))
			copy(data, v)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, nil
	}

	snap, err := decodeSnapshot(data)
	if err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	return snap, nil
}

// DeleteVault removes all data for a vault.
// Idempotent: deleting a nonexistent vault is not an error.
func (s *Store) DeleteVault(vaultID string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket([]byte(vaultID)); errors.Is(err, bolt.ErrBucketNotFound) {
			return nil // idempotent
		} else {
			return err
		}
	})
}
