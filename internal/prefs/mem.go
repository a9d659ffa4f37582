package prefs

import (
	"context"
	"sync"
)

// MemStore is an in-memory Store. It backs tests and has per-operation fault
// hooks so callers can exercise storage-failure paths (unavailable store,
// failing writes) without touching the filesystem.
type MemStore struct {
	mu     sync.RWMutex
	values map[string]string

	// Fault hooks. When non-nil, the corresponding operation returns the
	// error instead of touching the map.
	GetErr    error
	SetErr    error
	DeleteErr error
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{values: make(map[string]string)}
}

// Seed writes a value without going through the Store interface, bypassing
// any configured fault hooks.
func (s *MemStore) Seed(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
}

// Get returns the value for key, or ErrNotFound.
func (s *MemStore) Get(ctx context.Context, key string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.GetErr != nil {
		return "", s.GetErr
	}
	v, ok := s.values[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

// Set writes the value for key.
func (s *MemStore) Set(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.SetErr != nil {
		return s.SetErr
	}
	s.values[key] = value
	return nil
}

// Delete removes the key.
func (s *MemStore) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.DeleteErr != nil {
		return s.DeleteErr
	}
	delete(s.values, key)
	return nil
}

// Close is a no-op for the in-memory store.
func (s *MemStore) Close() error { return nil }
