package account

import (
	"context"
	"errors"
	"testing"
	"time"

	memclock "github.com/kickoff-app/kickoff-core/internal/adapters/memory/clock"
	memsession "github.com/kickoff-app/kickoff-core/internal/adapters/memory/sessionstore"
	"github.com/kickoff-app/kickoff-core/internal/app/session"
	"github.com/kickoff-app/kickoff-core/internal/domain"
	"github.com/kickoff-app/kickoff-core/internal/ports/out/accountapi"
)

type fakeAPI struct {
	profile domain.Profile
	prefs   accountapi.PrivacyPreferences
	err     error
}

func (f fakeAPI) Profile(ctx context.Context) (domain.Profile, error) { return f.profile, f.err }

func (f fakeAPI) PrivacyPreferences(ctx context.Context) (accountapi.PrivacyPreferences, error) {
	return f.prefs, f.err
}

func intPtr(n int) *int { return &n }

func TestService_ProfileNormalizesAndUpdatesSession(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	clk := memclock.NewManualClock(time.Date(2026, 1, 5, 8, 0, 0, 0, time.UTC))
	sessions := session.NewManager(memsession.NewStore(clk), clk)
	if err := sessions.Save(ctx, domain.Session{Token: "tok", Provider: domain.ProviderApple, Profile: domain.Profile{ID: "u1"}}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	svc := NewService(fakeAPI{profile: domain.Profile{ID: " u1 ", FirstName: "  Alex ", LastName: "Kim  ", Email: "alex@example.com"}}, WithProfileCache(sessions))

	p, err := svc.Profile(ctx)
	if err != nil {
		t.Fatalf("Profile: %v", err)
	}
	if p.ID != "u1" || p.DisplayName != "Alex Kim" {
		t.Fatalf("profile=%+v", p)
	}
	cur, err := sessions.Current(ctx)
	if err != nil {
		t.Fatalf("Current: %v", err)
	}
	if cur.Profile != p || cur.Token != "tok" {
		t.Fatalf("session=%+v", cur)
	}
}

func TestService_ProfileSignedOutStillReturns(t *testing.T) {
	t.Parallel()

	clk := memclock.NewManualClock(time.Date(2026, 1, 5, 8, 0, 0, 0, time.UTC))
	sessions := session.NewManager(memsession.NewStore(clk), clk)
	svc := NewService(fakeAPI{profile: domain.Profile{ID: "u1", Email: "sam@example.com"}}, WithProfileCache(sessions))

	p, err := svc.Profile(context.Background())
	if err != nil {
		t.Fatalf("Profile: %v", err)
	}
	if p.DisplayName != "sam" {
		t.Fatalf("DisplayName=%q", p.DisplayName)
	}
}

func TestService_ProfileErrors(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	if _, err := NewService(fakeAPI{err: boom}).Profile(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("err=%v", err)
	}
	if _, err := NewService(fakeAPI{profile: domain.Profile{ID: "  "}}).Profile(context.Background()); err == nil {
		t.Fatal("blank id accepted")
	}
}

func TestService_DeletionGraceDays(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		days *int
		want int
	}{
		{"absent", nil, DefaultDeletionGraceDays},
		{"explicit", intPtr(14), 14},
		{"zero", intPtr(0), 0},
		{"negative", intPtr(-3), DefaultDeletionGraceDays},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			svc := NewService(fakeAPI{prefs: accountapi.PrivacyPreferences{AccountDeletionGraceDays: tt.days}})
			got, err := svc.DeletionGraceDays(context.Background())
			if err != nil || got != tt.want {
				t.Fatalf("DeletionGraceDays()=%d, %v want %d", got, err, tt.want)
			}
		})
	}

	if _, err := NewService(fakeAPI{err: errors.New("down")}).DeletionGraceDays(context.Background()); err == nil {
		t.Fatal("error swallowed")
	}
}
