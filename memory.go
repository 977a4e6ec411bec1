package pagestore

import (
	"context"
	"sync"
)

// Memory implements Driver with thread-safe in-memory storage.
// Useful as a default, for tests, and as an embedding base for partial
// driver overrides.
type Memory struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemory creates an in-memory Driver instance.
func NewMemory() *Memory {
	return &Memory{data: make(map[string][]byte)}
}

func (m *Memory) Read(ctx context.Context, key string) ([]byte, error) {
	// Fast path: optimistic read with RLock.
	m.mu.RLock()
	value, ok := m.data[key]
	m.mu.RUnlock()

	if !ok {
		return nil, ErrNotFound
	}
	return clone(value), nil
}

func (m *Memory) Write(ctx context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = clone(value)
	return nil
}

func (m *Memory) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.data[key]; !ok {
		return ErrNotFound
	}
	delete(m.data, key)
	return nil
}

func (m *Memory) Exists(ctx context.Context, key string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.data[key]
	return ok, nil
}

// Keys returns all stored record keys in unspecified order.
func (m *Memory) Keys(ctx context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]string, 0, len(m.data))
	for key := range m.data {
		result = append(result, key)
	}
	return result, nil
}

// Clear removes every record.
func (m *Memory) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.data = make(map[string][]byte)
	return nil
}

func (m *Memory) Close() error {
	return nil
}

func clone(src []byte) []byte {
	if len(src) == 0 {
		return nil
	}
	dst := make([]byte, len(src))
	copy(dst, src)
	return dst
}
