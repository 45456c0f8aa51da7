package backendhttp

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/kickoff-app/kickoff-core/internal/adapters/wire"
	"github.com/kickoff-app/kickoff-core/internal/domain"
	"github.com/kickoff-app/kickoff-core/internal/platform/apierr"
	"github.com/kickoff-app/kickoff-core/internal/ports/out/reservationapi"
)

var _ reservationapi.API = (*Client)(nil)

func (c *Client) ListReservations(ctx context.Context) ([]domain.ReservationCard, error) {
	var body wire.ReservationsResponse
	if _, err := c.do(ctx, call{op: "GET /reservations", method: http.MethodGet, segments: []string{"reservations"}, out: &body}); err != nil {
		return nil, err
	}
	out := make([]domain.ReservationCard, 0, len(body.Reservations))
	for _, r := range body.Reservations {
		out = append(out, reservationFromWire(r))
	}
	return out, nil
}

// CancelReservation sends one Idempotency-Key per call so a retried request after a
// lost response is not applied twice.
func (c *Client) CancelReservation(ctx context.Context, id domain.ReservationID) error {
	const op = "DELETE /reservations/{id}"
	seg, err := pathParam("id", string(id))
	if err != nil {
		return apierr.Transport(op, err)
	}
	h := http.Header{}
	h.Set("Idempotency-Key", uuid.NewString())
	_, err = c.do(ctx, call{op: op, method: http.MethodDelete, segments: []string{"reservations", seg}, header: h})
	return err
}

func (c *Client) ReservationQRCode(ctx context.Context, id domain.ReservationID) (string, error) {
	const op = "GET /reservations/{id}"
	seg, err := pathParam("id", string(id))
	if err != nil {
		return "", apierr.Transport(op, err)
	}
	var body wire.ReservationDetail
	if _, err := c.do(ctx, call{op: op, method: http.MethodGet, segments: []string{"reservations", seg}, out: &body}); err != nil {
		return "", err
	}
	return body.QRCode, nil
}

func reservationFromWire(r wire.Reservation) domain.ReservationCard {
	return domain.ReservationCard{
		ID:          domain.ReservationID(r.ID),
		Status:      domain.ReservationStatus(r.Status),
		VenueName:   r.VenueName,
		MatchTitle:  r.MatchTitle,
		ScheduledAt: r.ScheduledAt,
		PartySize:   r.PartySize,
		Reference:   r.Reference,
	}
}
