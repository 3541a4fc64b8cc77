package repository

import (
	"context"
	"sync"
	"time"
)

type memSession struct {
	iqCode    string
	expiresAt time.Time
}

type memorySessionStore struct {
	mu       sync.Mutex
	sessions map[string]memSession
	now      func() time.Time
}

func NewMemorySessionStore() SessionStore {
	return &memorySessionStore{
		sessions: make(map[string]memSession),
		now:      time.Now,
	}
}

func (s *memorySessionStore) Register(_ context.Context, jti, iqCode string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	s.sweep(now)
	s.sessions[sessionKey(jti)] = memSession{iqCode: iqCode, expiresAt: now.Add(ttl)}
	return nil
}

func (s *memorySessionStore) Lookup(_ context.Context, jti string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := sessionKey(jti)
	sess, ok := s.sessions[key]
	if !ok {
		return "", ErrNotFound
	}
	if !s.now().Before(sess.expiresAt) {
		delete(s.sessions, key)
		return "", ErrNotFound
	}
	return sess.iqCode, nil
}

func (s *memorySessionStore) Revoke(_ context.Context, jti string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionKey(jti))
	return nil
}

// sweep drops expired entries; callers hold s.mu.
func (s *memorySessionStore) sweep(now time.Time) {
	for k, sess := range s.sessions {
		if !now.Before(sess.expiresAt) {
			delete(s.sessions, k)
		}
	}
}
