package credstore

import (
	"context"
	"sync"

	"summarizer/internal/auth"
)

// MemStore is an in-memory credential store used by tests.
type MemStore struct {
	mu    sync.Mutex
	cred  *auth.Credential
	saves int
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{}
}

// Load returns the stored credential, or (nil, nil) when empty.
func (s *MemStore) Load(_ context.Context) (*auth.Credential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cred == nil {
		return nil, nil
	}
	cred := *s.cred
	return &cred, nil
}

// Save replaces the stored credential.
func (s *MemStore) Save(_ context.Context, cred *auth.Credential) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *cred
	s.cred = &c
	s.saves++
	return nil
}

// Saves reports how many times Save was called.
func (s *MemStore) Saves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}
