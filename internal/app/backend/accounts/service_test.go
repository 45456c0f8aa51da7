package accounts_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	memaccountrepo "github.com/kickoff-app/kickoff-core/internal/adapters/memory/accountrepo"
	"github.com/kickoff-app/kickoff-core/internal/adapters/memory/clock"
	"github.com/kickoff-app/kickoff-core/internal/app/backend/accounts"
	"github.com/kickoff-app/kickoff-core/internal/domain"
	portaccountrepo "github.com/kickoff-app/kickoff-core/internal/ports/out/accountrepo"
)

func newService(t *testing.T) (*accounts.Service, *memaccountrepo.Repo) {
	t.Helper()
	repo := memaccountrepo.NewRepo()
	svc := accounts.NewService(repo, clock.NewManualClock(time.Unix(1_700_000_000, 0).UTC()))
	return svc, repo
}

func TestLogin_CreatesThenReturnsSameAccount(t *testing.T) {
	t.Parallel()

	svc, repo := newService(t)
	svc.SetNewUserIDForTest(func() domain.UserID { return "u1" })

	id := accounts.Identity{
		Provider:  domain.ProviderGoogle,
		Subject:   "g-123",
		Email:     " ana@example.com ",
		FirstName: "  Ana ",
		LastName:  "Silva",
	}
	p, err := svc.Login(context.Background(), id)
	if err != nil {
		t.Fatalf("Login() err=%v", err)
	}
	if p.ID != "u1" || p.Email != "ana@example.com" || p.DisplayName != "Ana Silva" {
		t.Fatalf("profile = %+v", p)
	}

	stored, err := repo.GetBySubject(context.Background(), domain.ProviderGoogle, "g-123")
	if err != nil {
		t.Fatalf("GetBySubject: %v", err)
	}
	if stored.FirstName != "Ana" || stored.AvatarURL != nil {
		t.Fatalf("stored = %+v", stored)
	}

	svc.SetNewUserIDForTest(func() domain.UserID { return "u2" })
	again, err := svc.Login(context.Background(), id)
	if err != nil || again.ID != "u1" {
		t.Fatalf("second Login() = %+v err=%v", again, err)
	}
}

func TestLogin_EmailRegisteredWithOtherProvider(t *testing.T) {
	t.Parallel()

	svc, _ := newService(t)
	if _, err := svc.Login(context.Background(), accounts.Identity{
		Provider: domain.ProviderGoogle,
		Subject:  "g-1",
		Email:    "fan@example.com",
	}); err != nil {
		t.Fatalf("seed Login() err=%v", err)
	}

	_, err := svc.Login(context.Background(), accounts.Identity{
		Provider: domain.ProviderApple,
		Subject:  "a-1",
		Email:    "FAN@example.com",
	})
	var ae *accounts.Error
	if !errors.As(err, &ae) {
		t.Fatalf("Login() err=%v, want *accounts.Error", err)
	}
	if ae.Status != 409 || ae.Code != "ACCOUNT_CONFLICT" {
		t.Fatalf("err = %+v", ae)
	}
	if want := "This email is already registered with Google. Sign in with Google instead."; ae.Message != want {
		t.Fatalf("message = %q, want %q", ae.Message, want)
	}
}

func TestLogin_WithoutEmailNeverConflicts(t *testing.T) {
	t.Parallel()

	svc, _ := newService(t)
	for _, sub := range []domain.SubjectID{"a-1", "a-2"} {
		if _, err := svc.Login(context.Background(), accounts.Identity{Provider: domain.ProviderApple, Subject: sub}); err != nil {
			t.Fatalf("Login(%s) err=%v", sub, err)
		}
	}
}

func TestLogin_RejectsEmptySubject(t *testing.T) {
	t.Parallel()

	svc, _ := newService(t)
	_, err := svc.Login(context.Background(), accounts.Identity{Provider: domain.ProviderGoogle, Subject: "  "})
	var ae *accounts.Error
	if !errors.As(err, &ae) || ae.Status != 401 {
		t.Fatalf("Login() err=%v, want 401", err)
	}
}

func TestLogin_ConcurrentFirstLoginsShareAccount(t *testing.T) {
	t.Parallel()

	svc, _ := newService(t)
	id := accounts.Identity{Provider: domain.ProviderGoogle, Subject: "g-race", Email: "race@example.com"}

	const n = 8
	ids := make([]domain.UserID, n)
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			p, err := svc.Login(context.Background(), id)
			ids[i], errs[i] = p.ID, err
		}(i)
	}
	wg.Wait()

	for i := range ids {
		if errs[i] != nil {
			t.Fatalf("Login #%d err=%v", i, errs[i])
		}
		if ids[i] != ids[0] {
			t.Fatalf("Login #%d id=%s, want %s", i, ids[i], ids[0])
		}
	}
}

func TestProfileAndGraceDays(t *testing.T) {
	t.Parallel()

	svc, repo := newService(t)
	grace := 7
	avatar := "https://img.test/u.png"
	now := time.Unix(1_700_000_000, 0).UTC()
	for _, a := range []portaccountrepo.Account{
		{ID: "custom", Provider: domain.ProviderApple, Subject: "s1", DisplayName: "Bo", AvatarURL: &avatar, DeletionGraceDays: &grace, CreatedAt: now, UpdatedAt: now},
		{ID: "default", Provider: domain.ProviderApple, Subject: "s2", Email: "cy@example.com", CreatedAt: now, UpdatedAt: now},
	} {
		if err := repo.Create(context.Background(), a); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	tests := []struct {
		id        domain.UserID
		wantName  string
		wantGrace int
	}{
		{id: "custom", wantName: "Bo", wantGrace: 7},
		{id: "default", wantName: "cy", wantGrace: accounts.DefaultDeletionGraceDays},
	}
	for _, tt := range tests {
		p, err := svc.Profile(context.Background(), tt.id)
		if err != nil || p.DisplayName != tt.wantName {
			t.Fatalf("Profile(%s) = %+v err=%v", tt.id, p, err)
		}
		days, err := svc.DeletionGraceDays(context.Background(), tt.id)
		if err != nil || days != tt.wantGrace {
			t.Fatalf("DeletionGraceDays(%s) = %d err=%v", tt.id, days, err)
		}
	}

	p, _ := svc.Profile(context.Background(), "custom")
	if p.AvatarURL != avatar {
		t.Fatalf("AvatarURL = %q", p.AvatarURL)
	}

	_, err := svc.Profile(context.Background(), "missing")
	var ae *accounts.Error
	if !errors.As(err, &ae) || ae.Status != 404 {
		t.Fatalf("Profile(missing) err=%v, want 404", err)
	}
}
