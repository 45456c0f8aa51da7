package httpapi

import (
	"net/http"

	"github.com/kickoff-app/kickoff-core/internal/adapters/wire"
	"github.com/kickoff-app/kickoff-core/internal/domain"
)

func (s *Server) me(w http.ResponseWriter, r *http.Request) {
	user, ok := UserIDFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing user")
		return
	}
	p, err := s.Accounts.Profile(r.Context(), user)
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, wire.MeResponse{User: userToWire(p)})
}

func (s *Server) privacyPreferences(w http.ResponseWriter, r *http.Request) {
	user, ok := UserIDFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing user")
		return
	}
	days, err := s.Accounts.DeletionGraceDays(r.Context(), user)
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	var out wire.PrivacyPreferences
	out.AccountDeletionGraceDays.Set(days)
	writeJSON(w, http.StatusOK, out)
}

func userToWire(p domain.Profile) wire.User {
	u := wire.User{
		ID:          string(p.ID),
		Email:       p.Email,
		FirstName:   p.FirstName,
		LastName:    p.LastName,
		DisplayName: p.DisplayName,
	}
	if p.AvatarURL != "" {
		u.AvatarURL.Set(p.AvatarURL)
	}
	return u
}
