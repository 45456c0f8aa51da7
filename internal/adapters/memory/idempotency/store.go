package idempotency

import (
	"context"
	"sync"
	"time"

	"github.com/kickoff-app/kickoff-core/internal/ports/out/clock"
	"github.com/kickoff-app/kickoff-core/internal/ports/out/idempotency"
)

// DefaultRetention is how long a replayable response is kept.
const DefaultRetention = 24 * time.Hour

// Store is an in-memory implementation of idempotency.Store.
// Records older than the retention window are treated as absent and pruned on Put.
// It is safe for concurrent use.
type Store struct {
	clock     clock.Clock
	retention time.Duration

	mu sync.RWMutex
	m  map[idempotency.Fingerprint]idempotency.Record
}

func NewStore(clk clock.Clock, retention time.Duration) *Store {
	if retention <= 0 {
		retention = DefaultRetention
	}
	return &Store{
		clock:     clk,
		retention: retention,
		m:         make(map[idempotency.Fingerprint]idempotency.Record),
	}
}

func (s *Store) expired(rec idempotency.Record, now time.Time) bool {
	return !rec.CreatedAt.IsZero() && now.Sub(rec.CreatedAt) >= s.retention
}

func (s *Store) Get(ctx context.Context, fp idempotency.Fingerprint) (idempotency.Record, bool, error) {
	_ = ctx
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.m[fp]
	if !ok || s.expired(rec, s.clock.Now()) {
		return idempotency.Record{}, false, nil
	}
	return rec, true, nil
}

func (s *Store) Put(ctx context.Context, fp idempotency.Fingerprint, rec idempotency.Record) error {
	_ = ctx
	now := s.clock.Now()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, old := range s.m {
		if s.expired(old, now) {
			delete(s.m, k)
		}
	}
	s.m[fp] = rec
	return nil
}

// Len reports how many records are held, expired or not.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.m)
}
