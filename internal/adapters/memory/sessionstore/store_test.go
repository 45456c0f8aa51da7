package sessionstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kickoff-app/kickoff-core/internal/adapters/contracttest"
	memclock "github.com/kickoff-app/kickoff-core/internal/adapters/memory/clock"
	"github.com/kickoff-app/kickoff-core/internal/ports/out/sessionstore"
)

func TestContract_MemorySessionStore(t *testing.T) {
	contracttest.RunSessionStore(t, func(t *testing.T) (sessionstore.Store, func()) {
		t.Helper()
		return NewStore(memclock.NewManualClock(time.Unix(0, 0))), nil
	})
}

func TestStore_ExpiresAfterTTL(t *testing.T) {
	t.Parallel()

	clk := memclock.NewManualClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	s := NewStore(clk)
	ctx := context.Background()

	if err := s.Put(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("Put() err=%v", err)
	}
	clk.Advance(59 * time.Second)
	if _, err := s.Get(ctx, "k"); err != nil {
		t.Fatalf("Get() before expiry err=%v", err)
	}
	clk.Advance(time.Second)
	if _, err := s.Get(ctx, "k"); !errors.Is(err, sessionstore.ErrNotFound) {
		t.Fatalf("Get() after expiry err=%v, want ErrNotFound", err)
	}
}

func TestStore_ReturnsCopies(t *testing.T) {
	t.Parallel()

	s := NewStore(memclock.NewManualClock(time.Unix(0, 0)))
	ctx := context.Background()

	in := []byte("abc")
	_ = s.Put(ctx, "k", in, 0)
	in[0] = 'x'
	got, _ := s.Get(ctx, "k")
	got[1] = 'y'
	again, _ := s.Get(ctx, "k")
	if string(again) != "abc" {
		t.Fatalf("stored value mutated: %q", again)
	}
}
