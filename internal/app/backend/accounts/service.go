// Package accounts provisions backend accounts from verified identity-provider claims.
package accounts

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kickoff-app/kickoff-core/internal/domain"
	"github.com/kickoff-app/kickoff-core/internal/platform/logger"
	"github.com/kickoff-app/kickoff-core/internal/ports/out/accountrepo"
	clockport "github.com/kickoff-app/kickoff-core/internal/ports/out/clock"
)

// DefaultDeletionGraceDays applies to accounts without their own setting.
const DefaultDeletionGraceDays = 30

// Identity is what a verified provider ID token says about its subject.
type Identity struct {
	Provider  domain.Provider
	Subject   domain.SubjectID
	Email     string
	FirstName string
	LastName  string
	// DisplayName is the provider's full-name claim, if any.
	DisplayName string
	AvatarURL   string
}

type Service struct {
	repo accountrepo.Repository
	clk  clockport.Clock
	log  *zap.Logger

	newUserID func() domain.UserID
}

type Option func(*Service)

func WithLogger(l *zap.Logger) Option { return func(s *Service) { s.log = logger.OrNop(l) } }

func NewService(repo accountrepo.Repository, clk clockport.Clock, opts ...Option) *Service {
	s := &Service{
		repo: repo,
		clk:  clk,
		log:  zap.NewNop(),
		newUserID: func() domain.UserID {
			return domain.UserID(uuid.NewString())
		},
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// SetNewUserIDForTest overrides user ID generation for deterministic tests.
// It should not be used in production code.
func (s *Service) SetNewUserIDForTest(fn func() domain.UserID) {
	if fn != nil {
		s.newUserID = fn
	}
}

// Login returns the account bound to the identity, creating it on first sign-in. An email
// already registered through another provider is a 409 ACCOUNT_CONFLICT.
func (s *Service) Login(ctx context.Context, id Identity) (domain.Profile, error) {
	if strings.TrimSpace(string(id.Subject)) == "" {
		return domain.Profile{}, &Error{Status: 401, Code: "UNAUTHORIZED", Message: "identity token has no subject"}
	}

	a, err := s.repo.GetBySubject(ctx, id.Provider, id.Subject)
	if err == nil {
		return toProfile(a), nil
	}
	if !errors.Is(err, accountrepo.ErrNotFound) {
		return domain.Profile{}, err
	}

	email := strings.TrimSpace(id.Email)
	if email != "" {
		existing, err := s.repo.GetByEmail(ctx, email)
		switch {
		case err == nil:
			return s.sameOrConflict(existing, id)
		case !errors.Is(err, accountrepo.ErrNotFound):
			return domain.Profile{}, err
		}
	}

	now := s.clk.Now().UTC()
	p := domain.NormalizeProfile(domain.Profile{
		ID:          s.newUserID(),
		Email:       email,
		FirstName:   id.FirstName,
		LastName:    id.LastName,
		DisplayName: id.DisplayName,
		AvatarURL:   id.AvatarURL,
	})
	a = accountrepo.Account{
		ID:          p.ID,
		Provider:    id.Provider,
		Subject:     id.Subject,
		Email:       p.Email,
		FirstName:   p.FirstName,
		LastName:    p.LastName,
		DisplayName: p.DisplayName,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if p.AvatarURL != "" {
		avatar := p.AvatarURL
		a.AvatarURL = &avatar
	}

	if err := s.repo.Create(ctx, a); err != nil {
		switch {
		case errors.Is(err, accountrepo.ErrAlreadyExists):
			// Lost a race with a concurrent first login of the same subject.
			a, err := s.repo.GetBySubject(ctx, id.Provider, id.Subject)
			if err != nil {
				return domain.Profile{}, err
			}
			return toProfile(a), nil
		case errors.Is(err, accountrepo.ErrEmailTaken):
			existing, gerr := s.repo.GetByEmail(ctx, email)
			if gerr != nil {
				return domain.Profile{}, fmt.Errorf("create account: %w", err)
			}
			return s.sameOrConflict(existing, id)
		}
		return domain.Profile{}, err
	}

	s.log.Info("account created",
		zap.String("user_id", string(a.ID)),
		zap.String("provider", string(a.Provider)),
	)
	return p, nil
}

func (s *Service) Profile(ctx context.Context, id domain.UserID) (domain.Profile, error) {
	a, err := s.get(ctx, id)
	if err != nil {
		return domain.Profile{}, err
	}
	return toProfile(a), nil
}

// DeletionGraceDays is the account's deletion grace period, or the default.
func (s *Service) DeletionGraceDays(ctx context.Context, id domain.UserID) (int, error) {
	a, err := s.get(ctx, id)
	if err != nil {
		return 0, err
	}
	if a.DeletionGraceDays == nil {
		return DefaultDeletionGraceDays, nil
	}
	return *a.DeletionGraceDays, nil
}

func (s *Service) get(ctx context.Context, id domain.UserID) (accountrepo.Account, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, accountrepo.ErrNotFound) {
			return accountrepo.Account{}, &Error{Status: 404, Code: "ACCOUNT_NOT_FOUND", Message: "account not found"}
		}
		return accountrepo.Account{}, err
	}
	return a, nil
}

// sameOrConflict resolves an email hit: the identity's own account (created concurrently)
// is returned, anything else is a conflict.
func (s *Service) sameOrConflict(existing accountrepo.Account, id Identity) (domain.Profile, error) {
	if existing.Provider == id.Provider && existing.Subject == id.Subject {
		return toProfile(existing), nil
	}
	return domain.Profile{}, conflict(existing.Provider)
}

func conflict(registered domain.Provider) *Error {
	name := registered.DisplayName()
	return &Error{
		Status:  409,
		Code:    "ACCOUNT_CONFLICT",
		Message: fmt.Sprintf("This email is already registered with %s. Sign in with %s instead.", name, name),
	}
}

func toProfile(a accountrepo.Account) domain.Profile {
	p := domain.Profile{
		ID:          a.ID,
		Email:       a.Email,
		FirstName:   a.FirstName,
		LastName:    a.LastName,
		DisplayName: a.DisplayName,
	}
	if a.AvatarURL != nil {
		p.AvatarURL = *a.AvatarURL
	}
	return domain.NormalizeProfile(p)
}
