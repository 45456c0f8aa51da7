// Package account serves the signed-in user's profile and privacy settings.
package account

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/kickoff-app/kickoff-core/internal/domain"
	"github.com/kickoff-app/kickoff-core/internal/platform/logger"
	"github.com/kickoff-app/kickoff-core/internal/ports/out/accountapi"
)

// DefaultDeletionGraceDays applies when the backend does not send a grace period.
const DefaultDeletionGraceDays = 30

// ProfileCache keeps the session's copy of the profile current.
type ProfileCache interface {
	UpdateProfile(ctx context.Context, p domain.Profile) error
}

type Service struct {
	api   accountapi.API
	cache ProfileCache
	log   *zap.Logger
}

type Option func(*Service)

func WithProfileCache(c ProfileCache) Option { return func(s *Service) { s.cache = c } }

func WithLogger(l *zap.Logger) Option { return func(s *Service) { s.log = logger.OrNop(l) } }

func NewService(api accountapi.API, opts ...Option) *Service {
	s := &Service{api: api, log: zap.NewNop()}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Profile fetches the canonical profile and refreshes the cached session copy.
func (s *Service) Profile(ctx context.Context) (domain.Profile, error) {
	p, err := s.api.Profile(ctx)
	if err != nil {
		return domain.Profile{}, fmt.Errorf("fetch profile: %w", err)
	}
	p = domain.NormalizeProfile(p)
	if p.ID == "" {
		return domain.Profile{}, errors.New("fetch profile: missing user id")
	}

	if s.cache != nil {
		if err := s.cache.UpdateProfile(ctx, p); err != nil {
			// The fetched profile is still good to show.
			s.log.Warn("profile cache update failed", zap.String("user_id", string(p.ID)), zap.Error(err))
		}
	}
	return p, nil
}

// DeletionGraceDays is how many days a deletion request waits before the account is removed.
func (s *Service) DeletionGraceDays(ctx context.Context) (int, error) {
	prefs, err := s.api.PrivacyPreferences(ctx)
	if err != nil {
		return 0, fmt.Errorf("fetch privacy preferences: %w", err)
	}
	if prefs.AccountDeletionGraceDays == nil {
		return DefaultDeletionGraceDays, nil
	}
	if d := *prefs.AccountDeletionGraceDays; d >= 0 {
		return d, nil
	}
	s.log.Warn("ignoring negative deletion grace period", zap.Int("days", *prefs.AccountDeletionGraceDays))
	return DefaultDeletionGraceDays, nil
}
