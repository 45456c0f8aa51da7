// Package session caches the backend session so the app survives restarts without a new
// sign-in.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/kickoff-app/kickoff-core/internal/domain"
	"github.com/kickoff-app/kickoff-core/internal/platform/logger"
	"github.com/kickoff-app/kickoff-core/internal/ports/out/authapi"
	"github.com/kickoff-app/kickoff-core/internal/ports/out/clock"
	"github.com/kickoff-app/kickoff-core/internal/ports/out/sessionstore"
)

// ErrNoSession means nobody is signed in, or the cached session has expired.
var ErrNoSession = errors.New("no active session")

// DefaultKey is the store key of the current session.
const DefaultKey = "session:current"

type Manager struct {
	store sessionstore.Store
	clock clock.Clock
	log   *zap.Logger
	key   string
}

type Option func(*Manager)

func WithLogger(l *zap.Logger) Option { return func(m *Manager) { m.log = logger.OrNop(l) } }

// WithKey namespaces the cached session, e.g. per device profile.
func WithKey(key string) Option { return func(m *Manager) { m.key = key } }

func NewManager(store sessionstore.Store, clk clock.Clock, opts ...Option) *Manager {
	m := &Manager{store: store, clock: clk, log: zap.NewNop(), key: DefaultKey}
	for _, o := range opts {
		o(m)
	}
	return m
}

type record struct {
	Token     string        `json:"token"`
	Provider  string        `json:"provider"`
	Profile   profileRecord `json:"profile"`
	CreatedAt time.Time     `json:"createdAt"`
	ExpiresAt *time.Time    `json:"expiresAt,omitempty"`
}

type profileRecord struct {
	ID          string `json:"id"`
	Email       string `json:"email,omitempty"`
	FirstName   string `json:"firstName,omitempty"`
	LastName    string `json:"lastName,omitempty"`
	DisplayName string `json:"displayName,omitempty"`
	AvatarURL   string `json:"avatarUrl,omitempty"`
}

// TokenExpiry reads the exp claim of a JWT without verifying it. Opaque tokens report false.
func TokenExpiry(token string) (time.Time, bool) {
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time.UTC(), true
}

// SaveLogin turns an accepted login into the current session. The expiry comes from the
// token's exp claim when it has one, else from the backend's expiresIn.
func (m *Manager) SaveLogin(ctx context.Context, provider domain.Provider, res authapi.LoginResult) (domain.Session, error) {
	now := m.clock.Now().UTC()
	s := domain.Session{
		Token:     res.Token,
		Provider:  provider,
		Profile:   res.Profile,
		CreatedAt: now,
	}
	if exp, ok := TokenExpiry(res.Token); ok {
		s.ExpiresAt = exp
	} else if res.ExpiresIn > 0 {
		s.ExpiresAt = now.Add(res.ExpiresIn)
	}
	if err := m.Save(ctx, s); err != nil {
		return domain.Session{}, err
	}
	return s, nil
}

func (m *Manager) Save(ctx context.Context, s domain.Session) error {
	if s.Token == "" {
		return fmt.Errorf("save session: empty token")
	}
	now := m.clock.Now()
	if s.Expired(now) {
		return fmt.Errorf("save session: already expired at %s", s.ExpiresAt.Format(time.RFC3339))
	}

	rec := record{
		Token:    s.Token,
		Provider: string(s.Provider),
		Profile: profileRecord{
			ID:          string(s.Profile.ID),
			Email:       s.Profile.Email,
			FirstName:   s.Profile.FirstName,
			LastName:    s.Profile.LastName,
			DisplayName: s.Profile.DisplayName,
			AvatarURL:   s.Profile.AvatarURL,
		},
		CreatedAt: s.CreatedAt.UTC(),
	}
	var ttl time.Duration
	if !s.ExpiresAt.IsZero() {
		exp := s.ExpiresAt.UTC()
		rec.ExpiresAt = &exp
		ttl = s.ExpiresAt.Sub(now)
	}

	b, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	if err := m.store.Put(ctx, m.key, b, ttl); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	m.log.Debug("session saved", zap.String("provider", rec.Provider), zap.String("user_id", rec.Profile.ID))
	return nil
}

// Current returns the cached session, or ErrNoSession.
func (m *Manager) Current(ctx context.Context) (domain.Session, error) {
	b, err := m.store.Get(ctx, m.key)
	if errors.Is(err, sessionstore.ErrNotFound) {
		return domain.Session{}, ErrNoSession
	}
	if err != nil {
		return domain.Session{}, fmt.Errorf("load session: %w", err)
	}

	var rec record
	if err := json.Unmarshal(b, &rec); err != nil || rec.Token == "" {
		// A corrupt entry is as good as no session; drop it so the next sign-in starts clean.
		m.log.Warn("discarding unreadable session entry", zap.Error(err))
		_ = m.store.Delete(ctx, m.key)
		return domain.Session{}, ErrNoSession
	}

	s := domain.Session{
		Token:    rec.Token,
		Provider: domain.Provider(rec.Provider),
		Profile: domain.Profile{
			ID:          domain.UserID(rec.Profile.ID),
			Email:       rec.Profile.Email,
			FirstName:   rec.Profile.FirstName,
			LastName:    rec.Profile.LastName,
			DisplayName: rec.Profile.DisplayName,
			AvatarURL:   rec.Profile.AvatarURL,
		},
		CreatedAt: rec.CreatedAt,
	}
	if rec.ExpiresAt != nil {
		s.ExpiresAt = *rec.ExpiresAt
	}
	if s.Expired(m.clock.Now()) {
		_ = m.store.Delete(ctx, m.key)
		return domain.Session{}, ErrNoSession
	}
	return s, nil
}

// UpdateProfile replaces the cached profile, keeping the token and expiry.
func (m *Manager) UpdateProfile(ctx context.Context, p domain.Profile) error {
	s, err := m.Current(ctx)
	if err != nil {
		return err
	}
	s.Profile = p
	return m.Save(ctx, s)
}

func (m *Manager) Clear(ctx context.Context) error {
	if err := m.store.Delete(ctx, m.key); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// BearerToken returns the current session token, or "" when signed out.
func (m *Manager) BearerToken(ctx context.Context) (string, error) {
	s, err := m.Current(ctx)
	if errors.Is(err, ErrNoSession) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return s.Token, nil
}
