package contracttest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/kickoff-app/kickoff-core/internal/domain"
	"github.com/kickoff-app/kickoff-core/internal/ports/out/accountrepo"
	"github.com/kickoff-app/kickoff-core/internal/ports/out/bookingrepo"
	idempotencyport "github.com/kickoff-app/kickoff-core/internal/ports/out/idempotency"
	"github.com/kickoff-app/kickoff-core/internal/ports/out/sessionstore"
)

type CleanupFunc = func()

type SessionStoreFactory func(t *testing.T) (sessionstore.Store, CleanupFunc)
type IdemStoreFactory func(t *testing.T) (idempotencyport.Store, CleanupFunc)
type AccountRepoFactory func(t *testing.T) (accountrepo.Repository, CleanupFunc)
type BookingRepoFactory func(t *testing.T) (bookingrepo.Repository, CleanupFunc)

func RunSessionStore(t *testing.T, newStore SessionStoreFactory) {
	t.Helper()
	ctx := context.Background()

	store, cleanup := newStore(t)
	if cleanup != nil {
		t.Cleanup(cleanup)
	}

	// Unique keys let shared backends (redis, postgres) run this repeatedly.
	key := "session:" + uuid.NewString()

	if _, err := store.Get(ctx, key); !errors.Is(err, sessionstore.ErrNotFound) {
		t.Fatalf("Get missing: expected ErrNotFound, got %v", err)
	}

	if err := store.Put(ctx, key, []byte(`{"token":"a"}`), time.Hour); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, err := store.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != `{"token":"a"}` {
		t.Fatalf("unexpected value: %q", got)
	}

	// Overwrite semantics, and no expiry when ttl <= 0.
	if err := store.Put(ctx, key, []byte(`{"token":"b"}`), 0); err != nil {
		t.Fatalf("Put overwrite: %v", err)
	}
	got, err = store.Get(ctx, key)
	if err != nil || string(got) != `{"token":"b"}` {
		t.Fatalf("expected overwritten value, got %q err=%v", got, err)
	}

	// Keys are independent.
	other := key + ":other"
	if _, err := store.Get(ctx, other); !errors.Is(err, sessionstore.ErrNotFound) {
		t.Fatalf("Get other: expected ErrNotFound, got %v", err)
	}

	if err := store.Delete(ctx, key); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := store.Get(ctx, key); !errors.Is(err, sessionstore.ErrNotFound) {
		t.Fatalf("Get after Delete: expected ErrNotFound, got %v", err)
	}
	if err := store.Delete(ctx, key); err != nil {
		t.Fatalf("Delete missing: %v", err)
	}
}

func RunIdempotencyStore(t *testing.T, newStore IdemStoreFactory) {
	t.Helper()
	ctx := context.Background()

	store, cleanup := newStore(t)
	if cleanup != nil {
		t.Cleanup(cleanup)
	}

	fp := idempotencyport.Fingerprint{
		Key:     idempotencyport.Key("k-" + uuid.NewString()),
		Subject: domain.SubjectID("sub-1"),
		Method:  "DELETE",
		Path:    "/reservations/r-1",
	}
	if _, ok, err := store.Get(ctx, fp); err != nil || ok {
		t.Fatalf("Get missing: ok=%v err=%v", ok, err)
	}

	rec := idempotencyport.Record{
		StatusCode:  204,
		ContentType: "application/json",
		Body:        []byte(`{}`),
		CreatedAt:   time.Unix(123, 0).UTC(),
	}
	if err := store.Put(ctx, fp, rec); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, ok, err := store.Get(ctx, fp)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !ok {
		t.Fatalf("expected ok=true")
	}
	if string(got.Body) != `{}` || got.ContentType != "application/json" || got.StatusCode != 204 {
		t.Fatalf("unexpected record: %+v", got)
	}

	// Overwrite semantics.
	rec2 := rec
	rec2.StatusCode = 409
	if err := store.Put(ctx, fp, rec2); err != nil {
		t.Fatalf("Put overwrite: %v", err)
	}
	got, ok, err = store.Get(ctx, fp)
	if err != nil || !ok || got.StatusCode != 409 {
		t.Fatalf("expected overwritten record, got ok=%v err=%v status=%d", ok, err, got.StatusCode)
	}

	// A different subject never sees another subject's record.
	otherSubject := fp
	otherSubject.Subject = "sub-2"
	if _, ok, err := store.Get(ctx, otherSubject); err != nil || ok {
		t.Fatalf("Get other subject: ok=%v err=%v", ok, err)
	}
}

func RunAccountRepo(t *testing.T, newRepo AccountRepoFactory) {
	t.Helper()
	ctx := context.Background()

	repo, cleanup := newRepo(t)
	if cleanup != nil {
		t.Cleanup(cleanup)
	}

	suffix := uuid.NewString()
	now := time.Unix(1_700_000_000, 0).UTC()
	grace := 14
	a := accountrepo.Account{
		ID:                domain.UserID("u-" + suffix),
		Provider:          domain.ProviderGoogle,
		Subject:           domain.SubjectID("sub-" + suffix),
		Email:             "Fan-" + suffix + "@Example.com",
		FirstName:         "Ana",
		LastName:          "Silva",
		DisplayName:       "Ana Silva",
		DeletionGraceDays: &grace,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if _, err := repo.GetByID(ctx, a.ID); !errors.Is(err, accountrepo.ErrNotFound) {
		t.Fatalf("GetByID missing: expected ErrNotFound, got %v", err)
	}
	if err := repo.Create(ctx, a); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := repo.GetByID(ctx, a.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Subject != a.Subject || got.Provider != a.Provider || got.DisplayName != "Ana Silva" {
		t.Fatalf("unexpected account: %+v", got)
	}
	if got.AvatarURL != nil {
		t.Fatalf("AvatarURL = %v, want nil", *got.AvatarURL)
	}
	if got.DeletionGraceDays == nil || *got.DeletionGraceDays != 14 {
		t.Fatalf("DeletionGraceDays = %v, want 14", got.DeletionGraceDays)
	}
	if !got.CreatedAt.Equal(now) {
		t.Fatalf("CreatedAt = %v, want %v", got.CreatedAt, now)
	}

	bySub, err := repo.GetBySubject(ctx, domain.ProviderGoogle, a.Subject)
	if err != nil || bySub.ID != a.ID {
		t.Fatalf("GetBySubject: id=%q err=%v", bySub.ID, err)
	}
	// The same subject under another provider is a different identity.
	if _, err := repo.GetBySubject(ctx, domain.ProviderApple, a.Subject); !errors.Is(err, accountrepo.ErrNotFound) {
		t.Fatalf("GetBySubject other provider: expected ErrNotFound, got %v", err)
	}

	byEmail, err := repo.GetByEmail(ctx, "  fan-"+suffix+"@example.COM ")
	if err != nil || byEmail.ID != a.ID {
		t.Fatalf("GetByEmail: id=%q err=%v", byEmail.ID, err)
	}

	dupID := a
	dupID.Subject = "other-" + domain.SubjectID(suffix)
	dupID.Email = ""
	if err := repo.Create(ctx, dupID); !errors.Is(err, accountrepo.ErrAlreadyExists) {
		t.Fatalf("Create duplicate id: expected ErrAlreadyExists, got %v", err)
	}

	dupSub := a
	dupSub.ID = domain.UserID("u2-" + suffix)
	dupSub.Email = ""
	if err := repo.Create(ctx, dupSub); !errors.Is(err, accountrepo.ErrAlreadyExists) {
		t.Fatalf("Create duplicate subject: expected ErrAlreadyExists, got %v", err)
	}

	dupEmail := accountrepo.Account{
		ID:        domain.UserID("u3-" + suffix),
		Provider:  domain.ProviderApple,
		Subject:   domain.SubjectID("apple-" + suffix),
		Email:     "fan-" + suffix + "@example.com",
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := repo.Create(ctx, dupEmail); !errors.Is(err, accountrepo.ErrEmailTaken) {
		t.Fatalf("Create duplicate email: expected ErrEmailTaken, got %v", err)
	}

	// Accounts without an email never collide with each other.
	for i, sub := range []string{"a-", "b-"} {
		noEmail := accountrepo.Account{
			ID:        domain.UserID(sub + suffix),
			Provider:  domain.ProviderApple,
			Subject:   domain.SubjectID(sub + "sub-" + suffix),
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := repo.Create(ctx, noEmail); err != nil {
			t.Fatalf("Create without email #%d: %v", i, err)
		}
	}
}

func RunBookingRepo(t *testing.T, newRepo BookingRepoFactory) {
	t.Helper()
	ctx := context.Background()

	repo, cleanup := newRepo(t)
	if cleanup != nil {
		t.Cleanup(cleanup)
	}

	suffix := uuid.NewString()
	owner := domain.UserID("owner-" + suffix)
	other := domain.UserID("other-" + suffix)
	base := time.Date(2030, time.June, 1, 18, 0, 0, 0, time.UTC)

	mk := func(id string, at time.Time) bookingrepo.Booking {
		return bookingrepo.Booking{
			ID:          domain.ReservationID(id + "-" + suffix),
			UserID:      owner,
			Status:      domain.ReservationConfirmed,
			VenueName:   "The Local",
			MatchTitle:  "Reds vs Blues",
			ScheduledAt: at,
			PartySize:   4,
			Reference:   "KO-" + id,
			CreatedAt:   base.Add(-48 * time.Hour),
			UpdatedAt:   base.Add(-48 * time.Hour),
		}
	}
	late := mk("b", base.Add(2*time.Hour))
	early := mk("c", base)
	tie := mk("a", base)

	for _, b := range []bookingrepo.Booking{late, early, tie} {
		if err := repo.Create(ctx, b); err != nil {
			t.Fatalf("Create %s: %v", b.ID, err)
		}
	}
	if err := repo.Create(ctx, early); !errors.Is(err, bookingrepo.ErrAlreadyExists) {
		t.Fatalf("Create duplicate: expected ErrAlreadyExists, got %v", err)
	}

	list, err := repo.ListByUser(ctx, owner)
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("ListByUser len = %d, want 3", len(list))
	}
	wantOrder := []domain.ReservationID{tie.ID, early.ID, late.ID}
	for i, want := range wantOrder {
		if list[i].ID != want {
			t.Fatalf("ListByUser[%d] = %s, want %s", i, list[i].ID, want)
		}
	}

	if got, err := repo.ListByUser(ctx, other); err != nil || len(got) != 0 {
		t.Fatalf("ListByUser other: len=%d err=%v", len(got), err)
	}

	got, err := repo.Get(ctx, owner, early.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Reference != "KO-c" || got.PartySize != 4 || !got.ScheduledAt.Equal(base) {
		t.Fatalf("unexpected booking: %+v", got)
	}
	if _, err := repo.Get(ctx, other, early.ID); !errors.Is(err, bookingrepo.ErrNotFound) {
		t.Fatalf("Get other owner: expected ErrNotFound, got %v", err)
	}

	at := base.Add(-24 * time.Hour)
	if err := repo.UpdateStatus(ctx, owner, early.ID, domain.ReservationCancelled, at); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	got, err = repo.Get(ctx, owner, early.ID)
	if err != nil {
		t.Fatalf("Get after update: %v", err)
	}
	if got.Status != domain.ReservationCancelled || !got.UpdatedAt.Equal(at) {
		t.Fatalf("after update: status=%s updated=%v", got.Status, got.UpdatedAt)
	}
	if err := repo.UpdateStatus(ctx, other, early.ID, domain.ReservationCancelled, at); !errors.Is(err, bookingrepo.ErrNotFound) {
		t.Fatalf("UpdateStatus other owner: expected ErrNotFound, got %v", err)
	}
}
