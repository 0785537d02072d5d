package storage

import (
	"context"
	"sync"
)

// MemoryStore is an in-memory Store with change notifications. Two session
// instances sharing one MemoryStore observe each other's writes, which
// mirrors same-origin tabs sharing browser local storage.
type MemoryStore struct {
	values   map[string][]byte
	handlers map[int]func(KeyChange)
	nextID   int
	mu       sync.RWMutex
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		values:   make(map[string][]byte),
		handlers: make(map[int]func(KeyChange)),
	}
}

// Get returns the stored value for key.
func (m *MemoryStore) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	value, ok := m.values[key]
	if !ok {
		return nil, ErrKeyNotFound
	}
	out := make([]byte, len(value))
	copy(out, value)
	return out, nil
}

// Set stores value under key and notifies subscribers.
func (m *MemoryStore) Set(ctx context.Context, key string, value []byte) error {
	stored := make([]byte, len(value))
	copy(stored, value)

	m.mu.Lock()
	old := m.values[key]
	m.values[key] = stored
	handlers := m.snapshotHandlers()
	m.mu.Unlock()

	for _, h := range handlers {
		h(KeyChange{Key: key, Old: old, New: stored})
	}
	return nil
}

// Delete removes key and notifies subscribers.
func (m *MemoryStore) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	old, existed := m.values[key]
	delete(m.values, key)
	handlers := m.snapshotHandlers()
	m.mu.Unlock()

	if !existed {
		return nil
	}
	for _, h := range handlers {
		h(KeyChange{Key: key, Old: old, New: nil})
	}
	return nil
}

// Subscribe registers handler for subsequent changes.
func (m *MemoryStore) Subscribe(handler func(KeyChange)) func() {
	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.handlers[id] = handler
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		delete(m.handlers, id)
		m.mu.Unlock()
	}
}

// snapshotHandlers must be called with mu held.
func (m *MemoryStore) snapshotHandlers() []func(KeyChange) {
	out := make([]func(KeyChange), 0, len(m.handlers))
	for _, h := range m.handlers {
		out = append(out, h)
	}
	return out
}
