package idempotency

import (
	"context"
	"testing"
	"time"

	memclock "github.com/kickoff-app/kickoff-core/internal/adapters/memory/clock"
	"github.com/kickoff-app/kickoff-core/internal/domain"
	"github.com/kickoff-app/kickoff-core/internal/ports/out/idempotency"
)

func TestStore_PutThenGet(t *testing.T) {
	t.Parallel()

	s := NewStore(memclock.NewManualClock(time.Unix(200, 0).UTC()), time.Hour)
	fp := idempotency.Fingerprint{
		Key:     "k1",
		Subject: domain.SubjectID("sub-1"),
		Method:  "DELETE",
		Path:    "/reservations/r-1",
	}
	rec := idempotency.Record{
		StatusCode:  204,
		ContentType: "application/json",
		CreatedAt:   time.Unix(123, 0).UTC(),
	}

	if err := s.Put(context.Background(), fp, rec); err != nil {
		t.Fatalf("Put() err=%v", err)
	}

	got, ok, err := s.Get(context.Background(), fp)
	if err != nil {
		t.Fatalf("Get() err=%v", err)
	}
	if !ok {
		t.Fatalf("Get() ok=false, want true")
	}
	if got.StatusCode != rec.StatusCode || got.ContentType != rec.ContentType || !got.CreatedAt.Equal(rec.CreatedAt) {
		t.Fatalf("Get()=%+v, want %+v", got, rec)
	}
}

func TestStore_PathIsPartOfFingerprint(t *testing.T) {
	t.Parallel()

	s := NewStore(memclock.NewManualClock(time.Unix(200, 0).UTC()), time.Hour)
	fp := idempotency.Fingerprint{Key: "k1", Subject: "sub-1", Method: "DELETE", Path: "/reservations/r-1"}
	if err := s.Put(context.Background(), fp, idempotency.Record{StatusCode: 204}); err != nil {
		t.Fatalf("Put() err=%v", err)
	}

	other := fp
	other.Path = "/reservations/r-2"
	if _, ok, _ := s.Get(context.Background(), other); ok {
		t.Fatalf("Get() for a different path returned a record")
	}
}

func TestStore_RetentionWindow(t *testing.T) {
	t.Parallel()

	clk := memclock.NewManualClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	s := NewStore(clk, time.Hour)
	ctx := context.Background()

	old := idempotency.Fingerprint{Key: "old", Subject: "sub-1", Method: "DELETE", Path: "/reservations/r-1"}
	_ = s.Put(ctx, old, idempotency.Record{StatusCode: 204})

	clk.Advance(time.Hour)
	if _, ok, _ := s.Get(ctx, old); ok {
		t.Fatalf("expired record still returned")
	}

	fresh := idempotency.Fingerprint{Key: "fresh", Subject: "sub-1", Method: "DELETE", Path: "/reservations/r-2"}
	_ = s.Put(ctx, fresh, idempotency.Record{StatusCode: 204})
	if s.Len() != 1 {
		t.Fatalf("Len()=%d after prune, want 1", s.Len())
	}
}
