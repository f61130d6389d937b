package storage

import (
	"context"
	"sync"
)

// MemoryStore keeps the document in process memory.
type MemoryStore struct {
	mu   sync.RWMutex
	data []byte
	// Fail, when set, is returned by Save. Tests use it to simulate a lost write.
	Fail error
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Load(ctx context.Context) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.data == nil {
		return nil, nil
	}
	return append([]byte(nil), m.data...), nil
}

func (m *MemoryStore) Save(ctx context.Context, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail != nil {
		return m.Fail
	}
	m.data = append([]byte(nil), data...)
	return nil
}

func (m *MemoryStore) Close() error { return nil }
