package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/kickoff-app/kickoff-core/internal/adapters/wire"
	"github.com/kickoff-app/kickoff-core/internal/app/backend/accounts"
	"github.com/kickoff-app/kickoff-core/internal/app/backend/bookings"
	"github.com/kickoff-app/kickoff-core/internal/app/backend/catalog"
)

func errorBody(r *http.Request, code, message string) wire.ErrorResponse {
	var er wire.ErrorResponse
	er.Error.Code = code
	er.Error.Message = message
	if rid := middleware.GetReqID(r.Context()); rid != "" {
		er.Error.RequestID.Set(rid)
	}
	return er
}

func writeError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	writeJSON(w, status, errorBody(r, code, message))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// appError maps the application-layer errors to a status, code and message. ok is false for
// anything else, which is a 500.
func appError(err error) (status int, code, message string, ok bool) {
	if ae := (*accounts.Error)(nil); errors.As(err, &ae) {
		return ae.Status, ae.Code, ae.Message, true
	}
	if be := (*bookings.Error)(nil); errors.As(err, &be) {
		return be.Status, be.Code, be.Message, true
	}
	if ce := (*catalog.Error)(nil); errors.As(err, &ce) {
		return ce.Status, ce.Code, ce.Message, true
	}
	return http.StatusInternalServerError, "INTERNAL", "internal error", false
}

func (s *Server) writeAppError(w http.ResponseWriter, r *http.Request, err error) {
	status, code, message, ok := appError(err)
	if !ok {
		s.log.Error("request failed",
			zap.String("path", r.URL.Path),
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.Error(err),
		)
	}
	writeError(w, r, status, code, message)
}
