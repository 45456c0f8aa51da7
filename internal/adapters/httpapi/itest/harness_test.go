package itest

import (
	"context"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/kickoff-app/kickoff-core/internal/adapters/backendhttp"
	"github.com/kickoff-app/kickoff-core/internal/adapters/httpapi"
	memaccountrepo "github.com/kickoff-app/kickoff-core/internal/adapters/memory/accountrepo"
	membookingrepo "github.com/kickoff-app/kickoff-core/internal/adapters/memory/bookingrepo"
	memcatalog "github.com/kickoff-app/kickoff-core/internal/adapters/memory/catalog"
	memclock "github.com/kickoff-app/kickoff-core/internal/adapters/memory/clock"
	memidempotency "github.com/kickoff-app/kickoff-core/internal/adapters/memory/idempotency"
	memsessionstore "github.com/kickoff-app/kickoff-core/internal/adapters/memory/sessionstore"
	pgaccountrepo "github.com/kickoff-app/kickoff-core/internal/adapters/postgres/accountrepo"
	pgbookingrepo "github.com/kickoff-app/kickoff-core/internal/adapters/postgres/bookingrepo"
	pgidempotency "github.com/kickoff-app/kickoff-core/internal/adapters/postgres/idempotency"
	postgres_testutil "github.com/kickoff-app/kickoff-core/internal/adapters/postgres/testutil"
	"github.com/kickoff-app/kickoff-core/internal/app/backend/accounts"
	"github.com/kickoff-app/kickoff-core/internal/app/backend/bookings"
	"github.com/kickoff-app/kickoff-core/internal/app/backend/catalog"
	"github.com/kickoff-app/kickoff-core/internal/app/session"
	"github.com/kickoff-app/kickoff-core/internal/platform/auth/jwks_testutil"
	"github.com/kickoff-app/kickoff-core/internal/platform/auth/jwtverifier"
	"github.com/kickoff-app/kickoff-core/internal/platform/auth/sessiontoken"
	platformclock "github.com/kickoff-app/kickoff-core/internal/platform/clock"
	"github.com/kickoff-app/kickoff-core/internal/platform/config"
	accountrepoport "github.com/kickoff-app/kickoff-core/internal/ports/out/accountrepo"
	bookingrepoport "github.com/kickoff-app/kickoff-core/internal/ports/out/bookingrepo"
	idempotencyport "github.com/kickoff-app/kickoff-core/internal/ports/out/idempotency"
	"github.com/kickoff-app/kickoff-core/internal/ports/out/identity"
)

type backend string

const (
	backendMemory   backend = "memory"
	backendPostgres backend = "postgres"
)

const (
	googleIssuer   = "https://accounts.google.itest"
	googleAudience = "itest-google-client"
	appleIssuer    = "https://appleid.apple.itest"
	appleAudience  = "itest.kickoff.app"
)

func backendsFromEnv(t *testing.T) []backend {
	t.Helper()
	switch strings.ToLower(strings.TrimSpace(os.Getenv("ITEST_BACKEND"))) {
	case "", "memory":
		return []backend{backendMemory}
	case "postgres":
		return []backend{backendPostgres}
	case "all":
		return []backend{backendMemory, backendPostgres}
	default:
		t.Fatalf("unknown ITEST_BACKEND value (expected memory|postgres|all)")
		return nil
	}
}

// stack is a running dev backend plus the app-side plumbing pointed at it.
type stack struct {
	baseURL string
	key     jwks_testutil.Keypair

	// clk drives the app side (debounce, banners, session expiry).
	clk      *memclock.ManualClock
	client   *backendhttp.Client
	sessions *session.Manager
}

func newStack(t *testing.T, b backend) *stack {
	t.Helper()

	kp, err := jwks_testutil.GenerateRSAKeypair("itest-1")
	if err != nil {
		t.Fatalf("GenerateRSAKeypair: %v", err)
	}
	jwksSrv, setKeys := jwks_testutil.NewRotatingJWKSServer()
	t.Cleanup(jwksSrv.Close)
	setKeys([]jwks_testutil.Keypair{kp})

	verifier := func(issuer, audience string) *jwtverifier.Verifier {
		return jwtverifier.New(config.IDTokenConfig{
			Issuer:                 issuer,
			Audience:               []string{audience},
			JWKSURL:                jwksSrv.URL,
			ClockSkew:              30 * time.Second,
			JWKSRefreshInterval:    5 * time.Minute,
			JWKSMinRefreshInterval: time.Second,
			HTTPTimeout:            5 * time.Second,
		})
	}

	const sessionIssuer = "itest-devbackend"
	var (
		accountRepo accountrepoport.Repository
		bookingRepo bookingrepoport.Repository
		idemStore   idempotencyport.Store
	)
	serverClock := platformclock.NewSystemClock()
	switch b {
	case backendPostgres:
		pool := postgres_testutil.OpenMigratedPool(t)
		accountRepo = pgaccountrepo.NewRepo(pool)
		bookingRepo = pgbookingrepo.NewRepo(pool)
		idemStore = pgidempotency.NewStore(pool, sessionIssuer)
	case backendMemory:
		accountRepo = memaccountrepo.NewRepo()
		bookingRepo = membookingrepo.NewRepo()
		idemStore = memidempotency.NewStore(serverClock, time.Hour)
	default:
		t.Fatalf("unknown backend: %s", b)
	}

	tokens, err := sessiontoken.New([]byte("itest-signing-key-0123456789abcdef"), sessiontoken.Options{
		Issuer: sessionIssuer,
		TTL:    24 * time.Hour,
	})
	if err != nil {
		t.Fatalf("sessiontoken.New: %v", err)
	}
	api, err := httpapi.NewServer(httpapi.Options{
		Catalog:  catalog.NewService(memcatalog.Demo(time.Now(), 7)),
		Accounts: accounts.NewService(accountRepo, serverClock),
		Bookings: bookings.NewService(bookingRepo, serverClock),
		Idem:     idemStore,
		Sessions: tokens,
		Google:   verifier(googleIssuer, googleAudience),
		Apple:    verifier(appleIssuer, appleAudience),
		Clock:    serverClock,
	})
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	srv := httptest.NewServer(httpapi.NewRouter(api))
	t.Cleanup(srv.Close)

	clk := memclock.NewManualClock(time.Now().UTC())
	sessions := session.NewManager(memsessionstore.NewStore(clk), clk)
	client, err := backendhttp.New(srv.URL, backendhttp.Options{Tokens: sessions})
	if err != nil {
		t.Fatalf("backendhttp.New: %v", err)
	}
	return &stack{baseURL: srv.URL, key: kp, clk: clk, client: client, sessions: sessions}
}

func (s *stack) mint(t *testing.T, issuer, audience, sub string, claims map[string]any) string {
	t.Helper()
	tok, err := jwks_testutil.MintRS256JWT(s.key, issuer, audience, sub, time.Now(), 10*time.Minute, nil, claims)
	if err != nil {
		t.Fatalf("MintRS256JWT: %v", err)
	}
	return tok
}

func (s *stack) googleToken(t *testing.T, sub, email, given, family string) string {
	return s.mint(t, googleIssuer, googleAudience, sub, map[string]any{
		"email":       email,
		"given_name":  given,
		"family_name": family,
	})
}

func (s *stack) appleToken(t *testing.T, sub, email string) string {
	return s.mint(t, appleIssuer, appleAudience, sub, map[string]any{"email": email})
}

// unique suffixes s so identities do not collide across runs against a shared database.
func unique(s string) string {
	return s + "-" + uuid.NewString()[:8]
}

// uniqueEmail returns a fresh example.com address.
func uniqueEmail(local string) string {
	return unique(local) + "@example.com"
}

// googleSDK hands back a fixed ID token, as the native prompt would after consent.
type googleSDK struct{ idToken string }

func (g googleSDK) Ready() bool { return true }

func (g googleSDK) Prompt(context.Context) (identity.GoogleResult, error) {
	return identity.GoogleResult{Outcome: identity.GoogleSuccess, IDToken: g.idToken}, nil
}

type appleSDK struct{ cred identity.AppleCredential }

func (a appleSDK) IsAvailable(context.Context) (bool, error) { return true, nil }

func (a appleSDK) SignIn(context.Context) (identity.AppleCredential, error) { return a.cred, nil }

var clientIDs = identity.GoogleClientIDs{IOS: googleAudience}
