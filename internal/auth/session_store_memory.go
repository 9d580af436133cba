package auth

import (
	"context"
	"sync"
)

// NewInMemorySessionStore returns a SessionStore backed by an in-memory map.
func NewInMemorySessionStore() *InMemorySessionStore {
	return &InMemorySessionStore{tokens: make(map[string]string)}
}

// InMemorySessionStore implements SessionStore for tests and local development.
// The mutex gives the same check-then-write atomicity the SQL store gets from
// its conditional update.
type InMemorySessionStore struct {
	mu     sync.Mutex
	tokens map[string]string
}

// SetRefreshToken stores the token, superseding any prior one.
func (s *InMemorySessionStore) SetRefreshToken(_ context.Context, accountID, token string) error {
	s.mu.Lock()
	s.tokens[accountID] = token
	s.mu.Unlock()
	return nil
}

// ReplaceRefreshToken swaps old for new only when old is the stored token.
func (s *InMemorySessionStore) ReplaceRefreshToken(_ context.Context, accountID, old, new string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.tokens[accountID]
	if !ok || current != old {
		return ErrRefreshTokenMismatch
	}
	s.tokens[accountID] = new
	return nil
}

// ClearRefreshToken removes the stored token. Idempotent.
func (s *InMemorySessionStore) ClearRefreshToken(_ context.Context, accountID string) error {
	s.mu.Lock()
	delete(s.tokens, accountID)
	s.mu.Unlock()
	return nil
}

// Current returns the stored token for an account. Useful for tests.
func (s *InMemorySessionStore) Current(accountID string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	token, ok := s.tokens[accountID]
	return token, ok
}
