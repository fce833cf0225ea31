package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is a process-local session store. Used in tests and when no
// REDIS_ADDR is configured. Expiry is lazy: stale entries are dropped on
// Resolve.
type MemoryStore struct {
	mu   sync.Mutex
	ttl  time.Duration
	data map[string]memEntry
	now  func() time.Time
}

type memEntry struct {
	ident   Identity
	expires time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		ttl:  ttl,
		data: make(map[string]memEntry),
		now:  time.Now,
	}
}

func (s *MemoryStore) Establish(_ context.Context, ident Identity) (string, error) {
	token := uuid.NewString()
	s.mu.Lock()
	s.data[token] = memEntry{ident: ident, expires: s.now().Add(s.ttl)}
	s.mu.Unlock()
	return token, nil
}

func (s *MemoryStore) Resolve(_ context.Context, token string) (Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.data[token]
	if !ok {
		return Identity{}, ErrNoSession
	}
	if s.now().After(e.expires) {
		delete(s.data, token)
		return Identity{}, ErrNoSession
	}
	return e.ident, nil
}

func (s *MemoryStore) Revoke(_ context.Context, token string) error {
	s.mu.Lock()
	delete(s.data, token)
	s.mu.Unlock()
	return nil
}
