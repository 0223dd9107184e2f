// Package store implements the persistence adapter: a profile-scoped
// key-value space holding the last core report, its identity, the profile
// traits and the dated daily pulse.
//
// Backends:
//   - MemoryKV: process-local, used in tests and with store.backend=memory
//   - SQLiteKV: a single-file database (modernc.org/sqlite, no cgo)
//   - RedisKV:  shared state for several front-ends using one profile
//
// Writes always replace a whole value; there are no partial updates.
package store

import (
	"context"
	"errors"
	"sync"
)

// ErrNotFound is returned by KV.Get for an absent key.
var ErrNotFound = errors.New("key not found")

// KV is a profile-scoped key-value space.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, keys ...string) error
	// Clear removes every key in the scope.
	Clear(ctx context.Context) error
	Close() error
}

// MemoryKV is an in-process KV.
type MemoryKV struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemoryKV creates an empty in-memory KV.
func NewMemoryKV() *MemoryKV {
	return &MemoryKV{data: make(map[string][]byte)}
}

func (m *MemoryKV) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

func (m *MemoryKV) Put(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = append([]byte(nil), value...)
	return nil
}

func (m *MemoryKV) Delete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.data, k)
	}
	return nil
}

func (m *MemoryKV) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = make(map[string][]byte)
	return nil
}

// Len returns the number of stored keys.
func (m *MemoryKV) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}

func (m *MemoryKV) Close() error { return nil }
