package reservationapi

import (
	"context"

	"github.com/kickoff-app/kickoff-core/internal/domain"
)

// API is the reservation surface of the backend.
type API interface {
	ListReservations(ctx context.Context) ([]domain.ReservationCard, error)
	CancelReservation(ctx context.Context, id domain.ReservationID) error
	// ReservationQRCode returns the ticket QR image as a data URI. The value is not validated.
	ReservationQRCode(ctx context.Context, id domain.ReservationID) (string, error)
}
