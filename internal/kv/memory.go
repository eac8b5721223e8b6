package kv

import (
	"context"
	"sync"
)

// MemoryBlob is a process-local Blob. Failures can be injected per operation.
type MemoryBlob struct {
	mu     sync.RWMutex
	values map[string][]byte

	GetErr    error
	PutErr    error
	DeleteErr error
}

func NewMemoryBlob() *MemoryBlob {
	return &MemoryBlob{values: make(map[string][]byte)}
}

func (m *MemoryBlob) Get(_ context.Context, key string) ([]byte, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	v, ok := m.values[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

func (m *MemoryBlob) Put(_ context.Context, key string, value []byte) error {
	if err := validateKey(key); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.PutErr != nil {
		return m.PutErr
	}
	m.values[key] = append([]byte(nil), value...)
	return nil
}

func (m *MemoryBlob) Delete(_ context.Context, key string) error {
	if err := validateKey(key); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.DeleteErr != nil {
		return m.DeleteErr
	}
	delete(m.values, key)
	return nil
}

func (m *MemoryBlob) Close() error { return nil }

// SetFailures configures injected errors; nil clears.
func (m *MemoryBlob) SetFailures(get, put, del error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GetErr, m.PutErr, m.DeleteErr = get, put, del
}
