package session

import (
	"context"
	"sync"
)

// MemoryStore keeps sessions in process memory. Every token stays valid until
// deleted, so a user may hold several sessions at once.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]uint64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]uint64)}
}

func (s *MemoryStore) Set(_ context.Context, token string, userID uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[token] = userID
	return nil
}

func (s *MemoryStore) Get(_ context.Context, token string) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	userID, ok := s.sessions[token]
	if !ok {
		return 0, ErrSessionNotFound
	}
	return userID, nil
}

func (s *MemoryStore) Delete(_ context.Context, token string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[token]; !ok {
		return false, nil
	}
	delete(s.sessions, token)
	return true, nil
}

func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
