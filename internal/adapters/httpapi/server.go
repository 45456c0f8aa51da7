// Package httpapi is the dev backend: a local implementation of the Kickoff REST contract
// for integration tests and app development against a laptop.
package httpapi

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/kickoff-app/kickoff-core/internal/app/backend/accounts"
	"github.com/kickoff-app/kickoff-core/internal/app/backend/bookings"
	"github.com/kickoff-app/kickoff-core/internal/app/backend/catalog"
	"github.com/kickoff-app/kickoff-core/internal/domain"
	"github.com/kickoff-app/kickoff-core/internal/platform/auth/jwtverifier"
	"github.com/kickoff-app/kickoff-core/internal/platform/logger"
	clockport "github.com/kickoff-app/kickoff-core/internal/ports/out/clock"
	"github.com/kickoff-app/kickoff-core/internal/ports/out/idempotency"
)

// IDTokenVerifier checks a provider ID token. *jwtverifier.Verifier implements it.
type IDTokenVerifier interface {
	Verify(ctx context.Context, token string) (jwtverifier.Claims, error)
}

// UnverifiedIDTokens reads ID-token claims without checking signatures (AUTH_MODE=dev).
type UnverifiedIDTokens struct{}

func (UnverifiedIDTokens) Verify(_ context.Context, token string) (jwtverifier.Claims, error) {
	return jwtverifier.ReadUnverified(token)
}

// SessionIssuer mints the session tokens handed out on login.
type SessionIssuer interface {
	SessionVerifier
	Issue(subject string) (string, time.Time, error)
	TTL() time.Duration
}

type Server struct {
	Catalog  *catalog.Service
	Accounts *accounts.Service
	Bookings *bookings.Service
	Idem     idempotency.Store
	Sessions SessionIssuer

	IDTokens map[domain.Provider]IDTokenVerifier

	clk clockport.Clock
	log *zap.Logger
}

type Options struct {
	Catalog  *catalog.Service
	Accounts *accounts.Service
	Bookings *bookings.Service
	// Idem enables Idempotency-Key replay on cancellation; nil disables it.
	Idem     idempotency.Store
	Sessions SessionIssuer
	Google   IDTokenVerifier
	Apple    IDTokenVerifier
	Clock    clockport.Clock
	Logger   *zap.Logger
}

func NewServer(opts Options) (*Server, error) {
	if opts.Catalog == nil || opts.Accounts == nil || opts.Bookings == nil {
		return nil, errors.New("httpapi: catalog, accounts and bookings services are required")
	}
	if opts.Sessions == nil {
		return nil, errors.New("httpapi: session issuer is required")
	}
	if opts.Clock == nil {
		return nil, errors.New("httpapi: clock is required")
	}
	s := &Server{
		Catalog:  opts.Catalog,
		Accounts: opts.Accounts,
		Bookings: opts.Bookings,
		Idem:     opts.Idem,
		Sessions: opts.Sessions,
		IDTokens: map[domain.Provider]IDTokenVerifier{},
		clk:      opts.Clock,
		log:      logger.OrNop(opts.Logger),
	}
	if opts.Google != nil {
		s.IDTokens[domain.ProviderGoogle] = opts.Google
	}
	if opts.Apple != nil {
		s.IDTokens[domain.ProviderApple] = opts.Apple
	}
	return s, nil
}
