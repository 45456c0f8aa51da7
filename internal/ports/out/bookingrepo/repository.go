package bookingrepo

import (
	"context"
	"errors"
	"time"

	"github.com/kickoff-app/kickoff-core/internal/domain"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
)

// Booking is the backend's record of a reservation.
type Booking struct {
	ID          domain.ReservationID
	UserID      domain.UserID
	Status      domain.ReservationStatus
	VenueName   string
	MatchTitle  string
	ScheduledAt time.Time
	PartySize   int
	Reference   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Repository is the persistence port for bookings. Every lookup is scoped to the owner, so a
// booking of another user reads as ErrNotFound.
type Repository interface {
	Create(ctx context.Context, b Booking) error
	Get(ctx context.Context, userID domain.UserID, id domain.ReservationID) (Booking, error)
	// ListByUser returns the user's bookings ordered by ScheduledAt, then ID.
	ListByUser(ctx context.Context, userID domain.UserID) ([]Booking, error)
	UpdateStatus(ctx context.Context, userID domain.UserID, id domain.ReservationID, status domain.ReservationStatus, at time.Time) error
}
