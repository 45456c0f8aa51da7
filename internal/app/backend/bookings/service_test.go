package bookings_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	membookingrepo "github.com/kickoff-app/kickoff-core/internal/adapters/memory/bookingrepo"
	"github.com/kickoff-app/kickoff-core/internal/adapters/memory/clock"
	"github.com/kickoff-app/kickoff-core/internal/app/backend/bookings"
	"github.com/kickoff-app/kickoff-core/internal/app/reservations"
	"github.com/kickoff-app/kickoff-core/internal/domain"
	portbookingrepo "github.com/kickoff-app/kickoff-core/internal/ports/out/bookingrepo"
)

var start = time.Date(2030, time.May, 10, 12, 0, 0, 0, time.UTC)

func seed(t *testing.T, repo *membookingrepo.Repo, user domain.UserID, id domain.ReservationID, status domain.ReservationStatus, at time.Time) {
	t.Helper()
	if err := repo.Create(context.Background(), portbookingrepo.Booking{
		ID:          id,
		UserID:      user,
		Status:      status,
		VenueName:   "The Local",
		MatchTitle:  "Reds vs Blues",
		ScheduledAt: at,
		PartySize:   2,
		Reference:   "KO-" + string(id),
		CreatedAt:   start,
		UpdatedAt:   start,
	}); err != nil {
		t.Fatalf("create booking: %v", err)
	}
}

func TestCancel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		status     domain.ReservationStatus
		kickoffIn  time.Duration
		id         domain.ReservationID
		wantStatus int
		wantCode   string
		wantMsg    string
	}{
		{name: "confirmed well ahead", status: domain.ReservationConfirmed, kickoffIn: 24 * time.Hour, id: "r1"},
		{name: "pending well ahead", status: domain.ReservationPending, kickoffIn: 3 * time.Hour, id: "r1"},
		{name: "unknown", status: domain.ReservationConfirmed, kickoffIn: 24 * time.Hour, id: "nope", wantStatus: 404, wantCode: "RESERVATION_NOT_FOUND"},
		{name: "already cancelled", status: domain.ReservationCancelled, kickoffIn: 24 * time.Hour, id: "r1", wantStatus: 409, wantCode: "ALREADY_CANCELLED"},
		{
			name:       "inside cutoff",
			status:     domain.ReservationConfirmed,
			kickoffIn:  90 * time.Minute,
			id:         "r1",
			wantStatus: 409,
			wantCode:   "CANCEL_WINDOW_CLOSED",
			wantMsg:    "Reservations can't be cancelled within 2 hours of kickoff.",
		},
		{name: "exactly at cutoff", status: domain.ReservationConfirmed, kickoffIn: 2 * time.Hour, id: "r1", wantStatus: 409, wantCode: "CANCEL_WINDOW_CLOSED"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			repo := membookingrepo.NewRepo()
			clk := clock.NewManualClock(start)
			seed(t, repo, "u1", "r1", tt.status, start.Add(tt.kickoffIn))
			svc := bookings.NewService(repo, clk)

			err := svc.Cancel(context.Background(), "u1", tt.id)
			if tt.wantStatus == 0 {
				if err != nil {
					t.Fatalf("Cancel() err=%v", err)
				}
				b, _ := repo.Get(context.Background(), "u1", "r1")
				if b.Status != domain.ReservationCancelled || !b.UpdatedAt.Equal(start) {
					t.Fatalf("after cancel: %+v", b)
				}
				return
			}
			var be *bookings.Error
			if !errors.As(err, &be) {
				t.Fatalf("Cancel() err=%v, want *bookings.Error", err)
			}
			if be.Status != tt.wantStatus || be.Code != tt.wantCode {
				t.Fatalf("err = %+v", be)
			}
			if tt.wantMsg != "" && be.Message != tt.wantMsg {
				t.Fatalf("message = %q, want %q", be.Message, tt.wantMsg)
			}
		})
	}
}

func TestCancel_OtherUsersBookingIsNotFound(t *testing.T) {
	t.Parallel()

	repo := membookingrepo.NewRepo()
	seed(t, repo, "owner", "r1", domain.ReservationConfirmed, start.Add(24*time.Hour))
	svc := bookings.NewService(repo, clock.NewManualClock(start))

	var be *bookings.Error
	if err := svc.Cancel(context.Background(), "intruder", "r1"); !errors.As(err, &be) || be.Status != 404 {
		t.Fatalf("Cancel() err=%v, want 404", err)
	}
	b, _ := repo.Get(context.Background(), "owner", "r1")
	if b.Status != domain.ReservationConfirmed {
		t.Fatalf("status = %s, want confirmed", b.Status)
	}
}

func TestCancelCutoffOption(t *testing.T) {
	t.Parallel()

	repo := membookingrepo.NewRepo()
	seed(t, repo, "u1", "r1", domain.ReservationConfirmed, start.Add(90*time.Minute))
	svc := bookings.NewService(repo, clock.NewManualClock(start), bookings.WithCancelCutoff(time.Hour))

	if err := svc.Cancel(context.Background(), "u1", "r1"); err != nil {
		t.Fatalf("Cancel() err=%v", err)
	}
}

func TestTicket_AttachesValidQRCode(t *testing.T) {
	t.Parallel()

	repo := membookingrepo.NewRepo()
	seed(t, repo, "u1", "r1", domain.ReservationConfirmed, start.Add(24*time.Hour))
	seed(t, repo, "u1", "r2", domain.ReservationConfirmed, start.Add(48*time.Hour))
	svc := bookings.NewService(repo, clock.NewManualClock(start))

	t1, err := svc.Ticket(context.Background(), "u1", "r1")
	if err != nil {
		t.Fatalf("Ticket() err=%v", err)
	}
	if !reservations.ValidQRDataURI(t1.QRCodeDataURI) {
		t.Fatalf("QR data URI rejected by the client: %.40q", t1.QRCodeDataURI)
	}
	again, _ := svc.Ticket(context.Background(), "u1", "r1")
	if again.QRCodeDataURI != t1.QRCodeDataURI {
		t.Fatal("ticket image is not deterministic")
	}
	t2, _ := svc.Ticket(context.Background(), "u1", "r2")
	if t2.QRCodeDataURI == t1.QRCodeDataURI {
		t.Fatal("different references rendered the same image")
	}

	var be *bookings.Error
	if _, err := svc.Ticket(context.Background(), "u2", "r1"); !errors.As(err, &be) || be.Status != 404 {
		t.Fatalf("Ticket(other user) err=%v, want 404", err)
	}
}

func TestEnsureDemo(t *testing.T) {
	t.Parallel()

	repo := membookingrepo.NewRepo()
	svc := bookings.NewService(repo, clock.NewManualClock(start))
	n := 0
	svc.SetNewIDForTest(func() domain.ReservationID {
		n++
		return domain.ReservationID(fmt.Sprintf("demo-%d", n))
	})

	if err := svc.EnsureDemo(context.Background(), "u1"); err != nil {
		t.Fatalf("EnsureDemo() err=%v", err)
	}
	if err := svc.EnsureDemo(context.Background(), "u1"); err != nil {
		t.Fatalf("second EnsureDemo() err=%v", err)
	}
	list, err := svc.List(context.Background(), "u1")
	if err != nil {
		t.Fatalf("List() err=%v", err)
	}
	if len(list) != 4 {
		t.Fatalf("len = %d, want 4 (seeding must be idempotent)", len(list))
	}
	for i := 1; i < len(list); i++ {
		if list[i].ScheduledAt.Before(list[i-1].ScheduledAt) {
			t.Fatal("list not ordered by kickoff")
		}
	}

	// The soonest demo booking sits inside the cutoff so the failure path is reachable.
	soonest := list[0]
	if soonest.Reference != "KO-DEMO3" {
		t.Fatalf("soonest = %+v", soonest)
	}
	var be *bookings.Error
	if err := svc.Cancel(context.Background(), "u1", soonest.ID); !errors.As(err, &be) || be.Code != "CANCEL_WINDOW_CLOSED" {
		t.Fatalf("Cancel(soonest) err=%v", err)
	}
}
