package sessionstore

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/kickoff-app/kickoff-core/internal/adapters/contracttest"
	memclock "github.com/kickoff-app/kickoff-core/internal/adapters/memory/clock"
	"github.com/kickoff-app/kickoff-core/internal/ports/out/sessionstore"
)

func TestContract_BoltSessionStore(t *testing.T) {
	contracttest.RunSessionStore(t, func(t *testing.T) (sessionstore.Store, func()) {
		t.Helper()
		s, err := Open(filepath.Join(t.TempDir(), "session.db"), memclock.NewManualClock(time.Unix(0, 0)))
		if err != nil {
			t.Fatalf("Open() err=%v", err)
		}
		return s, func() { _ = s.Close() }
	})
}

func TestStore_PersistsAcrossReopen(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "session.db")
	clk := memclock.NewManualClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	ctx := context.Background()

	s, err := Open(path, clk)
	if err != nil {
		t.Fatalf("Open() err=%v", err)
	}
	if err := s.Put(ctx, "session:current", []byte("tok"), time.Hour); err != nil {
		t.Fatalf("Put() err=%v", err)
	}
	_ = s.Close()

	s, err = Open(path, clk)
	if err != nil {
		t.Fatalf("reopen err=%v", err)
	}
	defer s.Close()

	got, err := s.Get(ctx, "session:current")
	if err != nil || string(got) != "tok" {
		t.Fatalf("Get()=%q err=%v", got, err)
	}

	clk.Advance(time.Hour)
	if _, err := s.Get(ctx, "session:current"); !errors.Is(err, sessionstore.ErrNotFound) {
		t.Fatalf("Get() after expiry err=%v", err)
	}
}
