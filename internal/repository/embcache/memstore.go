package embcache

import (
	"context"
	"sync"

	"github.com/catalogix/askdex/internal/db"
)

// MemStore is a bounded in-process key-value store for cached embeddings.
// When full it evicts the oldest insertion. Capacity 0 means unbounded.
type MemStore struct {
	mu       sync.RWMutex
	capacity int
	values   map[string][]byte
	order    []string
}

// NewMemStore creates an in-process embedding cache store.
func NewMemStore(capacity int) *MemStore {
	return &MemStore{
		capacity: capacity,
		values:   make(map[string][]byte),
	}
}

// Get retrieves a cached value; db.ErrKeyNotFound on miss.
func (m *MemStore) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.values[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return data, nil
}

// Set stores a value, evicting the oldest insertion when over capacity.
func (m *MemStore) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.values[key]; !exists {
		m.order = append(m.order, key)
	}
	m.values[key] = value

	for m.capacity > 0 && len(m.values) > m.capacity {
		oldest := m.order[0]
		m.order = m.order[1:]
		delete(m.values, oldest)
	}
	return nil
}

// Len reports the number of cached entries.
func (m *MemStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.values)
}
