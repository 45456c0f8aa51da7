package bookingrepo

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/kickoff-app/kickoff-core/internal/domain"
	"github.com/kickoff-app/kickoff-core/internal/ports/out/bookingrepo"
)

type key struct {
	userID domain.UserID
	id     domain.ReservationID
}

// Repo is an in-memory implementation of bookingrepo.Repository.
// It is safe for concurrent use.
type Repo struct {
	mu  sync.RWMutex
	m   map[key]bookingrepo.Booking
	ids map[domain.ReservationID]struct{}
}

func NewRepo() *Repo {
	return &Repo{
		m:   make(map[key]bookingrepo.Booking),
		ids: make(map[domain.ReservationID]struct{}),
	}
}

func (r *Repo) Create(ctx context.Context, b bookingrepo.Booking) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.ids[b.ID]; ok {
		return bookingrepo.ErrAlreadyExists
	}
	r.ids[b.ID] = struct{}{}
	r.m[key{userID: b.UserID, id: b.ID}] = b
	return nil
}

func (r *Repo) Get(ctx context.Context, userID domain.UserID, id domain.ReservationID) (bookingrepo.Booking, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.m[key{userID: userID, id: id}]
	if !ok {
		return bookingrepo.Booking{}, bookingrepo.ErrNotFound
	}
	return b, nil
}

func (r *Repo) ListByUser(ctx context.Context, userID domain.UserID) ([]bookingrepo.Booking, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]bookingrepo.Booking, 0)
	for k, v := range r.m {
		if k.userID == userID {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ScheduledAt.Equal(out[j].ScheduledAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].ScheduledAt.Before(out[j].ScheduledAt)
	})
	return out, nil
}

func (r *Repo) UpdateStatus(ctx context.Context, userID domain.UserID, id domain.ReservationID, status domain.ReservationStatus, at time.Time) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	k := key{userID: userID, id: id}
	b, ok := r.m[k]
	if !ok {
		return bookingrepo.ErrNotFound
	}
	b.Status = status
	b.UpdatedAt = at
	r.m[k] = b
	return nil
}
