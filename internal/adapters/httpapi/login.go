package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/kickoff-app/kickoff-core/internal/adapters/wire"
	"github.com/kickoff-app/kickoff-core/internal/app/backend/accounts"
	"github.com/kickoff-app/kickoff-core/internal/domain"
	"github.com/kickoff-app/kickoff-core/internal/platform/auth/jwtverifier"
)

const maxLoginBody = 64 << 10

func (s *Server) loginGoogle(w http.ResponseWriter, r *http.Request) {
	var body wire.GoogleLoginRequest
	if !s.decodeLogin(w, r, &body) {
		return
	}
	claims, ok := s.verifyIDToken(w, r, domain.ProviderGoogle, body.IDToken)
	if !ok {
		return
	}
	s.finishLogin(w, r, accounts.Identity{
		Provider:    domain.ProviderGoogle,
		Subject:     domain.SubjectID(claims.Subject),
		Email:       claims.Email,
		FirstName:   claims.GivenName,
		LastName:    claims.FamilyName,
		DisplayName: claims.Name,
	})
}

// loginApple prefers the names the app forwards: Apple only puts them in the first
// authorization response, never in the token.
func (s *Server) loginApple(w http.ResponseWriter, r *http.Request) {
	var body wire.AppleLoginRequest
	if !s.decodeLogin(w, r, &body) {
		return
	}
	claims, ok := s.verifyIDToken(w, r, domain.ProviderApple, body.IDToken)
	if !ok {
		return
	}
	id := accounts.Identity{
		Provider:  domain.ProviderApple,
		Subject:   domain.SubjectID(claims.Subject),
		Email:     claims.Email,
		FirstName: claims.GivenName,
		LastName:  claims.FamilyName,
	}
	if v := wire.Ptr(body.FirstName); v != nil {
		id.FirstName = *v
	}
	if v := wire.Ptr(body.LastName); v != nil {
		id.LastName = *v
	}
	s.finishLogin(w, r, id)
}

func (s *Server) decodeLogin(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxLoginBody))
	if err := dec.Decode(dst); err != nil {
		rejectLogin(w, http.StatusBadRequest, "Malformed login request.")
		return false
	}
	return true
}

func (s *Server) verifyIDToken(w http.ResponseWriter, r *http.Request, p domain.Provider, token string) (jwtverifier.Claims, bool) {
	if strings.TrimSpace(token) == "" {
		rejectLogin(w, http.StatusBadRequest, "idToken is required.")
		return jwtverifier.Claims{}, false
	}
	v, ok := s.IDTokens[p]
	if !ok {
		rejectLogin(w, http.StatusNotImplemented, p.DisplayName()+" sign-in is not enabled on this server.")
		return jwtverifier.Claims{}, false
	}
	claims, err := v.Verify(r.Context(), token)
	if err != nil {
		s.log.Info("id token rejected", zap.String("provider", string(p)), zap.Error(err))
		rejectLogin(w, http.StatusUnauthorized, "The "+p.DisplayName()+" credential could not be verified.")
		return jwtverifier.Claims{}, false
	}
	return claims, true
}

func (s *Server) finishLogin(w http.ResponseWriter, r *http.Request, id accounts.Identity) {
	profile, err := s.Accounts.Login(r.Context(), id)
	if err != nil {
		var ae *accounts.Error
		if errors.As(err, &ae) {
			// Account conflicts are answered with HTTP 200; the body carries the status.
			httpStatus := ae.Status
			if ae.Status == http.StatusConflict {
				httpStatus = http.StatusOK
			}
			writeJSON(w, httpStatus, loginRejection(ae.Status, ae.Message))
			return
		}
		s.writeAppError(w, r, err)
		return
	}

	if err := s.Bookings.EnsureDemo(r.Context(), profile.ID); err != nil {
		s.log.Warn("seed demo reservations", zap.String("user_id", string(profile.ID)), zap.Error(err))
	}

	token, _, err := s.Sessions.Issue(string(profile.ID))
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	user, err := json.Marshal(userToWire(profile))
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	out := wire.LoginResponse{Success: true, Token: token, User: user}
	out.ExpiresIn.Set(int64(s.Sessions.TTL().Seconds()))
	writeJSON(w, http.StatusOK, out)
}

func loginRejection(status int, reason string) wire.LoginResponse {
	out := wire.LoginResponse{Success: false}
	out.Status.Set(status)
	out.Reason.Set(reason)
	return out
}

func rejectLogin(w http.ResponseWriter, status int, reason string) {
	writeJSON(w, status, loginRejection(status, reason))
}
