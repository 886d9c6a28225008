package store

import (
	"context"
	"sync/atomic"

	"github.com/cinewave/cinewave/internal/syncmap"
)

// Memory is a volatile backend. It is the default in tests.
type Memory struct {
	data   *syncmap.Map[string, string]
	closed atomic.Bool
}

// NewMemory creates an empty in-memory backend.
func NewMemory() *Memory {
	return &Memory{data: syncmap.New[string, string]()}
}

// Get implements KV.
func (m *Memory) Get(_ context.Context, key string) (string, bool, error) {
	if m.closed.Load() {
		return "", false, ErrClosed
	}
	v, ok := m.data.Load(key)
	return v, ok, nil
}

// Set implements KV.
func (m *Memory) Set(_ context.Context, key, value string) error {
	if m.closed.Load() {
		return ErrClosed
	}
	m.data.Store(key, value)
	return nil
}

// Remove implements KV.
func (m *Memory) Remove(_ context.Context, key string) error {
	if m.closed.Load() {
		return ErrClosed
	}
	m.data.Delete(key)
	return nil
}

// Keys implements Backend.
func (m *Memory) Keys(_ context.Context, prefix string) ([]string, error) {
	if m.closed.Load() {
		return nil, ErrClosed
	}
	return syncmap.KeysWithPrefix(m.data, prefix), nil
}

// Close implements Backend.
func (m *Memory) Close() error {
	m.closed.Store(true)
	return nil
}
