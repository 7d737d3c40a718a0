package fixture

import (
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"
)

var bucketFixtures = []byte("fixtures_by_id")

// Store is a bbolt-backed collection of YAML fixture documents, keyed by
// Fixture.ID, used by otx-bench to replay a large corpus without
// re-reading files from disk on every run.
type Store struct {
	db *bolt.DB
}

// OpenStore opens (creating if absent) a bbolt database at path.
func OpenStore(path string) (*Store, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("fixture: open bbolt: %w", err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketFixtures)
		return err
	}); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("fixture: create bucket: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database file.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Put stores f under its ID, overwriting any prior fixture with the
// same ID.
func (s *Store) Put(f Fixture) error {
	doc, err := Marshal(f)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketFixtures).Put([]byte(f.ID), doc)
	})
}

// Get loads the fixture stored under id.
func (s *Store) Get(id string) (Fixture, error) {
	var f Fixture
	err := s.db.View(func(tx *bolt.Tx) error {
		doc := tx.Bucket(bucketFixtures).Get([]byte(id))
		if doc == nil {
			return fmt.Errorf("fixture: no fixture with id %q", id)
		}
		parsed, err := Parse(doc)
		if err != nil {
			return err
		}
		f = parsed
		return nil
	})
	return f, err
}

// All returns every fixture in the store, in bbolt's key-sorted order.
func (s *Store) All() ([]Fixture, error) {
	var out []Fixture
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketFixtures).ForEach(func(_, doc []byte) error {
			f, err := Parse(doc)
			if err != nil {
				return err
			}
			out = append(out, f)
			return nil
		})
	})
	return out, err
}
