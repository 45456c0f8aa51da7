package httpapi

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"

	"github.com/kickoff-app/kickoff-core/internal/adapters/wire"
	"github.com/kickoff-app/kickoff-core/internal/domain"
	"github.com/kickoff-app/kickoff-core/internal/ports/out/idempotency"
)

func (s *Server) listReservations(w http.ResponseWriter, r *http.Request) {
	user, ok := UserIDFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing user")
		return
	}
	cards, err := s.Bookings.List(r.Context(), user)
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	out := wire.ReservationsResponse{Reservations: make([]wire.Reservation, 0, len(cards))}
	for _, c := range cards {
		out.Reservations = append(out.Reservations, reservationToWire(c))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) getReservation(w http.ResponseWriter, r *http.Request) {
	user, id, ok := s.reservationTarget(w, r)
	if !ok {
		return
	}
	card, err := s.Bookings.Ticket(r.Context(), user, id)
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, wire.ReservationDetail{
		Reservation: reservationToWire(card),
		QRCode:      card.QRCodeDataURI,
	})
}

// cancelReservation honours Idempotency-Key: a retried request with the same key replays the
// first answer instead of reporting the reservation as already cancelled.
func (s *Server) cancelReservation(w http.ResponseWriter, r *http.Request) {
	user, id, ok := s.reservationTarget(w, r)
	if !ok {
		return
	}

	var fp *idempotency.Fingerprint
	if key := strings.TrimSpace(r.Header.Get("Idempotency-Key")); key != "" && s.Idem != nil {
		fp = &idempotency.Fingerprint{
			Key:     idempotency.Key(key),
			Subject: domain.SubjectID(user),
			Method:  http.MethodDelete,
			Path:    r.URL.Path,
		}
		rec, found, err := s.Idem.Get(r.Context(), *fp)
		if err != nil {
			s.writeAppError(w, r, err)
			return
		}
		if found {
			replay(w, rec)
			return
		}
	}

	status, body := http.StatusNoContent, []byte(nil)
	if err := s.Bookings.Cancel(r.Context(), user, id); err != nil {
		code, errCode, message, known := appError(err)
		if !known {
			s.writeAppError(w, r, err)
			return
		}
		status = code
		body, _ = json.Marshal(errorBody(r, errCode, message))
	}

	if fp != nil {
		rec := idempotency.Record{StatusCode: status, ContentType: contentType(body), Body: body, CreatedAt: s.clk.Now().UTC()}
		if err := s.Idem.Put(r.Context(), *fp, rec); err != nil {
			s.writeAppError(w, r, err)
			return
		}
	}
	replay(w, idempotency.Record{StatusCode: status, Body: body, ContentType: contentType(body)})
}

func contentType(body []byte) string {
	if body == nil {
		return ""
	}
	return "application/json"
}

func replay(w http.ResponseWriter, rec idempotency.Record) {
	if rec.ContentType != "" {
		w.Header().Set("Content-Type", rec.ContentType)
	}
	w.WriteHeader(rec.StatusCode)
	if len(rec.Body) > 0 {
		_, _ = w.Write(rec.Body)
	}
}

func (s *Server) reservationTarget(w http.ResponseWriter, r *http.Request) (domain.UserID, domain.ReservationID, bool) {
	user, ok := UserIDFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing user")
		return "", "", false
	}
	var id string
	if err := runtime.BindStyledParameterWithLocation("simple", false, "id", runtime.ParamLocationPath, chi.URLParam(r, "id"), &id); err != nil || id == "" {
		writeError(w, r, http.StatusBadRequest, "INVALID_PARAMETER", "invalid id parameter")
		return "", "", false
	}
	return user, domain.ReservationID(id), true
}

func reservationToWire(c domain.ReservationCard) wire.Reservation {
	return wire.Reservation{
		ID:          string(c.ID),
		Status:      string(c.Status),
		VenueName:   c.VenueName,
		MatchTitle:  c.MatchTitle,
		ScheduledAt: c.ScheduledAt,
		PartySize:   c.PartySize,
		Reference:   c.Reference,
	}
}
