package store

import (
	"context"
	"sync"
)

// MemorySlots keeps slots in a map. Err, when set, is returned by every
// call so tests can simulate a broken backend.
type MemorySlots struct {
	mu     sync.Mutex
	values map[string]string
	puts   int

	Err error
}

func NewMemorySlots() *MemorySlots {
	return &MemorySlots{values: make(map[string]string)}
}

func (m *MemorySlots) Get(ctx context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return "", false, m.Err
	}
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *MemorySlots) Put(ctx context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.values[key] = value
	m.puts++
	return nil
}

// Puts counts successful writes.
func (m *MemorySlots) Puts() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.puts
}
