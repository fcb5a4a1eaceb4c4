package session

import (
	"context"
	"errors"
	"sync"
	"time"
)

// MemoryStore keeps sessions in process memory. Sessions are lost on restart.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]User
	now      func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]User),
		now:      time.Now,
	}
}

func (s *MemoryStore) Get(_ context.Context, id string) (*User, error) {
	s.mu.RLock()
	u, ok := s.sessions[id]
	s.mu.RUnlock()

	if !ok || u.Expired(s.now()) {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (s *MemoryStore) Save(_ context.Context, u *User) error {
	if u == nil || u.ID == "" {
		return errors.New("session id is empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[u.ID] = *u
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

func (s *MemoryStore) PurgeExpired(_ context.Context) (int64, error) {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	var purged int64
	for id, u := range s.sessions {
		if u.Expired(now) {
			delete(s.sessions, id)
			purged++
		}
	}
	return purged, nil
}
