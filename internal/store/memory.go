package store

import (
	"context"
	"sync"
)

// Memory is a Store that lives only as long as the process
type Memory struct {
	data map[string]string
	mu   sync.RWMutex
}

var _ Store = (*Memory)(nil)

// NewMemory creates an empty in-process Store
func NewMemory() *Memory {
	return &Memory{
		data: map[string]string{},
	}
}

func (m *Memory) Get(_ context.Context, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if v, ok := m.data[key]; ok {
		return v, nil
	}
	return "", ErrNotFound
}

func (m *Memory) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *Memory) Close() error {
	return nil
}
