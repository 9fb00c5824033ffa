package authclient

import "sync"

// TokenStore holds the in-memory access token for the current session.
// The refresh token never passes through here; it lives in the HTTP cookie
// jar and is managed entirely by the backend.
type TokenStore interface {
	AccessToken() string
	SetAccessToken(token string)
	Clear()
}

type MemoryTokenStore struct {
	m     sync.RWMutex
	token string
}

func NewMemoryTokenStore() *MemoryTokenStore {
	return &MemoryTokenStore{}
}

func (s *MemoryTokenStore) AccessToken() string {
	s.m.RLock()
	defer s.m.RUnlock()
	return s.token
}

func (s *MemoryTokenStore) SetAccessToken(token string) {
	s.m.Lock()
	defer s.m.Unlock()
	s.token = token
}

func (s *MemoryTokenStore) Clear() {
	s.m.Lock()
	defer s.m.Unlock()
	s.token = ""
}
