package persistence

import (
	"context"
	"sync"

	"github.com/devesh-qurilo/truepadosi/pkg/api"
)

// MemoryStorage is a simple, goroutine-safe SecureStorage backed by a map.
// It is non-durable and intended for tests and the examples.
type MemoryStorage struct {
	mu    sync.RWMutex
	items map[string]string
}

// NewMemoryStorage creates an empty MemoryStorage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{items: make(map[string]string)}
}

// Ensure MemoryStorage implements the interface.
var _ api.SecureStorage = (*MemoryStorage)(nil)

func (m *MemoryStorage) GetItem(ctx context.Context, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.items[key], nil
}

func (m *MemoryStorage) SetItem(ctx context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = value
	return nil
}

func (m *MemoryStorage) RemoveItem(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, key)
	return nil
}
