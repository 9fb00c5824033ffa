package stubapi

import (
	"context"
	"sync"
	"time"
)

type tokenEntry struct {
	userID    int64
	expiresAt time.Time
}

// MemoryTokenStore is the default store for local development and tests.
// Expiry is checked lazily on lookup.
type MemoryTokenStore struct {
	m      sync.RWMutex
	tokens map[string]tokenEntry
}

func NewMemoryTokenStore() *MemoryTokenStore {
	return &MemoryTokenStore{tokens: make(map[string]tokenEntry)}
}

func tokenKey(kind, token string) string {
	return kind + ":" + token
}

func (s *MemoryTokenStore) Save(_ context.Context, kind, token string, userID int64, ttl time.Duration) error {
	s.m.Lock()
	defer s.m.Unlock()
	s.tokens[tokenKey(kind, token)] = tokenEntry{userID: userID, expiresAt: time.Now().Add(ttl)}
	return nil
}

func (s *MemoryTokenStore) Lookup(_ context.Context, kind, token string) (int64, error) {
	s.m.RLock()
	defer s.m.RUnlock()
	entry, ok := s.tokens[tokenKey(kind, token)]
	if !ok || time.Now().After(entry.expiresAt) {
		return 0, ErrTokenNotFound
	}
	return entry.userID, nil
}

func (s *MemoryTokenStore) Revoke(_ context.Context, kind, token string) error {
	s.m.Lock()
	defer s.m.Unlock()
	delete(s.tokens, tokenKey(kind, token))
	return nil
}
