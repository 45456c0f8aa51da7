package sessionstore

import (
	"context"
	"sync"
	"time"

	"github.com/kickoff-app/kickoff-core/internal/ports/out/clock"
	"github.com/kickoff-app/kickoff-core/internal/ports/out/sessionstore"
)

type entry struct {
	value     []byte
	expiresAt time.Time
}

// Store is an in-memory implementation of sessionstore.Store.
// It is safe for concurrent use.
type Store struct {
	clock clock.Clock

	mu sync.RWMutex
	m  map[string]entry
}

func NewStore(clk clock.Clock) *Store {
	return &Store{clock: clk, m: make(map[string]entry)}
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	_ = ctx
	s.mu.RLock()
	e, ok := s.m[key]
	s.mu.RUnlock()
	if !ok {
		return nil, sessionstore.ErrNotFound
	}
	if !e.expiresAt.IsZero() && !s.clock.Now().Before(e.expiresAt) {
		s.mu.Lock()
		if cur, ok := s.m[key]; ok && cur.expiresAt.Equal(e.expiresAt) {
			delete(s.m, key)
		}
		s.mu.Unlock()
		return nil, sessionstore.ErrNotFound
	}
	return append([]byte(nil), e.value...), nil
}

func (s *Store) Put(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	_ = ctx
	e := entry{value: append([]byte(nil), value...)}
	if ttl > 0 {
		e.expiresAt = s.clock.Now().Add(ttl)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[key] = e
	return nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, key)
	return nil
}
