// Package bookings serves a user's reservations: listing, ticket codes and cancellation.
package bookings

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kickoff-app/kickoff-core/internal/domain"
	"github.com/kickoff-app/kickoff-core/internal/platform/logger"
	"github.com/kickoff-app/kickoff-core/internal/ports/out/bookingrepo"
	clockport "github.com/kickoff-app/kickoff-core/internal/ports/out/clock"
)

// DefaultCancelCutoff is how long before kickoff a booking stops being cancellable.
const DefaultCancelCutoff = 2 * time.Hour

type Service struct {
	repo   bookingrepo.Repository
	clk    clockport.Clock
	log    *zap.Logger
	cutoff time.Duration

	newID func() domain.ReservationID
}

type Option func(*Service)

func WithLogger(l *zap.Logger) Option { return func(s *Service) { s.log = logger.OrNop(l) } }

func WithCancelCutoff(d time.Duration) Option {
	return func(s *Service) {
		if d >= 0 {
			s.cutoff = d
		}
	}
}

func NewService(repo bookingrepo.Repository, clk clockport.Clock, opts ...Option) *Service {
	s := &Service{
		repo:   repo,
		clk:    clk,
		log:    zap.NewNop(),
		cutoff: DefaultCancelCutoff,
		newID: func() domain.ReservationID {
			return domain.ReservationID(uuid.NewString())
		},
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// SetNewIDForTest overrides reservation ID generation for deterministic tests.
// It should not be used in production code.
func (s *Service) SetNewIDForTest(fn func() domain.ReservationID) {
	if fn != nil {
		s.newID = fn
	}
}

func (s *Service) List(ctx context.Context, user domain.UserID) ([]domain.ReservationCard, error) {
	bs, err := s.repo.ListByUser(ctx, user)
	if err != nil {
		return nil, err
	}
	out := make([]domain.ReservationCard, 0, len(bs))
	for _, b := range bs {
		out = append(out, toCard(b))
	}
	return out, nil
}

// Ticket returns the booking with its QR data URI attached.
func (s *Service) Ticket(ctx context.Context, user domain.UserID, id domain.ReservationID) (domain.ReservationCard, error) {
	b, err := s.get(ctx, user, id)
	if err != nil {
		return domain.ReservationCard{}, err
	}
	card := toCard(b)
	if card.QRCodeDataURI, err = QRDataURI(b.Reference); err != nil {
		return domain.ReservationCard{}, fmt.Errorf("render ticket: %w", err)
	}
	return card, nil
}

func (s *Service) Cancel(ctx context.Context, user domain.UserID, id domain.ReservationID) error {
	b, err := s.get(ctx, user, id)
	if err != nil {
		return err
	}
	if b.Status == domain.ReservationCancelled {
		return &Error{Status: 409, Code: "ALREADY_CANCELLED", Message: "This reservation is already cancelled."}
	}
	now := s.clk.Now()
	if !now.Before(b.ScheduledAt.Add(-s.cutoff)) {
		return &Error{
			Status:  409,
			Code:    "CANCEL_WINDOW_CLOSED",
			Message: fmt.Sprintf("Reservations can't be cancelled within %s of kickoff.", humanDuration(s.cutoff)),
		}
	}
	if err := s.repo.UpdateStatus(ctx, user, id, domain.ReservationCancelled, now.UTC()); err != nil {
		if errors.Is(err, bookingrepo.ErrNotFound) {
			return notFound()
		}
		return err
	}
	s.log.Info("reservation cancelled",
		zap.String("user_id", string(user)),
		zap.String("reservation_id", string(id)),
	)
	return nil
}

type demoBooking struct {
	status    domain.ReservationStatus
	venue     string
	match     string
	in        time.Duration
	partySize int
}

var demoBookings = []demoBooking{
	{status: domain.ReservationConfirmed, venue: "The Corner Flag", match: "Arsenal vs Chelsea", in: 50 * time.Hour, partySize: 4},
	{status: domain.ReservationPending, venue: "Golden Boot Bar", match: "Manchester City vs Manchester United", in: 98 * time.Hour, partySize: 2},
	{status: domain.ReservationConfirmed, venue: "The Kop End", match: "Liverpool vs Everton", in: 90 * time.Minute, partySize: 6},
	{status: domain.ReservationCancelled, venue: "Offside Tavern", match: "Real Madrid vs Barcelona", in: 26 * time.Hour, partySize: 3},
}

// EnsureDemo gives a user without any bookings a small demo set, one of them inside the
// cancellation cutoff.
func (s *Service) EnsureDemo(ctx context.Context, user domain.UserID) error {
	existing, err := s.repo.ListByUser(ctx, user)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}
	now := s.clk.Now().UTC()
	for _, d := range demoBookings {
		id := s.newID()
		b := bookingrepo.Booking{
			ID:          id,
			UserID:      user,
			Status:      d.status,
			VenueName:   d.venue,
			MatchTitle:  d.match,
			ScheduledAt: now.Add(d.in).Truncate(time.Minute),
			PartySize:   d.partySize,
			Reference:   reference(id),
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := s.repo.Create(ctx, b); err != nil && !errors.Is(err, bookingrepo.ErrAlreadyExists) {
			return err
		}
	}
	return nil
}

func (s *Service) get(ctx context.Context, user domain.UserID, id domain.ReservationID) (bookingrepo.Booking, error) {
	b, err := s.repo.Get(ctx, user, id)
	if err != nil {
		if errors.Is(err, bookingrepo.ErrNotFound) {
			return bookingrepo.Booking{}, notFound()
		}
		return bookingrepo.Booking{}, err
	}
	return b, nil
}

func notFound() *Error {
	return &Error{Status: 404, Code: "RESERVATION_NOT_FOUND", Message: "reservation not found"}
}

// reference is the short code printed on a ticket.
func reference(id domain.ReservationID) string {
	r := strings.ToUpper(strings.ReplaceAll(string(id), "-", ""))
	if len(r) > 8 {
		r = r[:8]
	}
	return "KO-" + r
}

func humanDuration(d time.Duration) string {
	switch {
	case d == time.Hour:
		return "1 hour"
	case d%time.Hour == 0:
		return fmt.Sprintf("%d hours", d/time.Hour)
	case d%time.Minute == 0:
		return fmt.Sprintf("%d minutes", d/time.Minute)
	}
	return d.String()
}

func toCard(b bookingrepo.Booking) domain.ReservationCard {
	return domain.ReservationCard{
		ID:          b.ID,
		Status:      b.Status,
		VenueName:   b.VenueName,
		MatchTitle:  b.MatchTitle,
		ScheduledAt: b.ScheduledAt,
		PartySize:   b.PartySize,
		Reference:   b.Reference,
	}
}
