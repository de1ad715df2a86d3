package testutil

import (
	"context"
	"sync"

	"github.com/econdata/fred-api-client/pkg/store"
)

// MockStore is an in-memory store.Store. Its function fields, when set,
// override the map-backed behavior so tests can inject failures.
type MockStore struct {
	GetFunc         func(ctx context.Context, key []byte) ([]byte, error)
	ContainsFunc    func(ctx context.Context, key []byte) (bool, error)
	PutIfAbsentFunc func(ctx context.Context, key, value []byte) error

	mu   sync.RWMutex
	data map[string][]byte
}

// NewMockStore creates an empty in-memory store.
func NewMockStore() *MockStore {
	return &MockStore{data: make(map[string][]byte)}
}

// Get implements store.Store.
func (m *MockStore) Get(ctx context.Context, key []byte) ([]byte, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, key)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	value, ok := m.data[string(key)]
	if !ok {
		return nil, store.ErrNotFound
	}
	out := make([]byte, len(value))
	copy(out, value)
	return out, nil
}

// Contains implements store.Store.
func (m *MockStore) Contains(ctx context.Context, key []byte) (bool, error) {
	if m.ContainsFunc != nil {
		return m.ContainsFunc(ctx, key)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.data[string(key)]
	return ok, nil
}

// PutIfAbsent implements store.Store.
func (m *MockStore) PutIfAbsent(ctx context.Context, key, value []byte) error {
	if m.PutIfAbsentFunc != nil {
		return m.PutIfAbsentFunc(ctx, key, value)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.data[string(key)]; ok {
		return nil
	}
	stored := make([]byte, len(value))
	copy(stored, value)
	m.data[string(key)] = stored
	return nil
}

// Len returns the number of stored entries.
func (m *MockStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}

// Seed stores a value directly, bypassing the write-once check.
func (m *MockStore) Seed(key, value []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[string(key)] = value
}
