package boltdb

import (
	"context"
	"fmt"
	"sync"

	"go.etcd.io/bbolt"

	"github.com/maati-dev/maati/internal/client/storage"
)

var bucketSession = []byte("session")

// Store is a BoltDB-backed session store. A single process may share one
// Store between several sessions; changes are fanned out to subscribers
// registered with Subscribe, which stands in for the cross-tab broadcast a
// browser gets from local storage events.
type Store struct {
	db       *bbolt.DB
	mu       sync.Mutex
	handlers map[int]func(storage.KeyChange)
	nextID   int
}

// New opens (or creates) the database file at dbPath.
func New(ctx context.Context, dbPath string) (*Store, error) {
	db, err := bbolt.Open(dbPath, 0o600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open boltdb: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketSession)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize session bucket: %w", err)
	}

	return &Store{
		db:       db,
		handlers: make(map[int]func(storage.KeyChange)),
	}, nil
}

// Close closes the database file.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// Get returns the stored value for key.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	if s.db == nil {
		return nil, storage.ErrStorageClosed
	}

	var value []byte
	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketSession)
		if bucket == nil {
			return fmt.Errorf("session bucket not found")
		}
		data := bucket.Get([]byte(key))
		if data == nil {
			return storage.ErrKeyNotFound
		}
		value = append([]byte(nil), data...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return value, nil
}

// Set stores value under key and notifies subscribers.
func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	if s.db == nil {
		return storage.ErrStorageClosed
	}

	var old []byte
	err := s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketSession)
		if bucket == nil {
			return fmt.Errorf("session bucket not found")
		}
		if prev := bucket.Get([]byte(key)); prev != nil {
			old = append([]byte(nil), prev...)
		}
		if err := bucket.Put([]byte(key), value); err != nil {
			return fmt.Errorf("failed to save key %q: %w", key, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.notify(storage.KeyChange{Key: key, Old: old, New: append([]byte(nil), value...)})
	return nil
}

// Delete removes key. Deleting an absent key is a no-op.
func (s *Store) Delete(ctx context.Context, key string) error {
	if s.db == nil {
		return storage.ErrStorageClosed
	}

	var old []byte
	var existed bool
	err := s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketSession)
		if bucket == nil {
			return fmt.Errorf("session bucket not found")
		}
		if prev := bucket.Get([]byte(key)); prev != nil {
			old = append([]byte(nil), prev...)
			existed = true
		}
		if err := bucket.Delete([]byte(key)); err != nil {
			return fmt.Errorf("failed to delete key %q: %w", key, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if existed {
		s.notify(storage.KeyChange{Key: key, Old: old})
	}
	return nil
}

// Subscribe registers handler for subsequent changes and returns an
// unsubscribe function.
func (s *Store) Subscribe(handler func(storage.KeyChange)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.handlers[id] = handler
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.handlers, id)
		s.mu.Unlock()
	}
}

func (s *Store) notify(change storage.KeyChange) {
	s.mu.Lock()
	handlers := make([]func(storage.KeyChange), 0, len(s.handlers))
	for _, h := range s.handlers {
		handlers = append(handlers, h)
	}
	s.mu.Unlock()

	for _, h := range handlers {
		h(change)
	}
}
