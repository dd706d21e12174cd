package tokenstore

import (
	"context"
	"sync"
)

// memoryStore implements Store with a mutex-guarded record. Used by
// default and in tests; tokens do not survive a restart.
type memoryStore struct {
	mu  sync.RWMutex
	rec *Record
}

// NewMemory creates a new in-memory token store.
func NewMemory() Store {
	return &memoryStore{}
}

// Save implements Store.
func (s *memoryStore) Save(ctx context.Context, rec *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *rec
	s.rec = &cp
	return nil
}

// Load implements Store.
func (s *memoryStore) Load(ctx context.Context) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.rec == nil {
		return nil, nil
	}
	cp := *s.rec
	return &cp, nil
}

// Clear implements Store.
func (s *memoryStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.rec = nil
	return nil
}

// Close implements Store.
func (s *memoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.rec = nil
	return nil
}
