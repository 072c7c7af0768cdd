package kv

import (
	"context"
	"sync"
)

// MemoryStore is an in-process Store used by tests and local tooling. Both
// scopes share the map; scope still partitions the key space.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: map[string][]byte{}}
}

func (m *MemoryStore) Load(ctx context.Context, scope Scope, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	value, ok := m.entries[m.compose(scope, key)]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]byte, len(value))
	copy(out, value)
	return out, nil
}

func (m *MemoryStore) Save(ctx context.Context, scope Scope, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := make([]byte, len(value))
	copy(stored, value)
	m.entries[m.compose(scope, key)] = stored
	return nil
}

func (m *MemoryStore) Remove(ctx context.Context, scope Scope, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.entries, m.compose(scope, key))
	return nil
}

func (m *MemoryStore) compose(scope Scope, key string) string {
	return string(scope) + ":" + key
}
