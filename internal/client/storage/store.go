package storage

import "context"

// Store is the client-side persistent key/value store backing a session.
// It is the lowest storage layer: values are opaque bytes, durability is
// best-effort and implementations must be safe for concurrent use.
type Store interface {
	// Get returns the stored value for key.
	// Returns ErrKeyNotFound if the key does not exist.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

// KeyChange describes an externally observed change to a stored key.
// Old or New is nil when the key was created or removed respectively.
type KeyChange struct {
	Key string
	Old []byte
	New []byte
}

// Notifier delivers change notifications for keys modified by another
// session instance sharing the same store. Implementations may be backed
// by platform change events, a message bus, or polling.
type Notifier interface {
	// Subscribe registers handler for subsequent changes and returns a
	// function that removes the subscription.
	Subscribe(handler func(KeyChange)) (unsubscribe func())
}
