package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/kickoff-app/kickoff-core/internal/adapters/httpapi"
	memaccountrepo "github.com/kickoff-app/kickoff-core/internal/adapters/memory/accountrepo"
	membookingrepo "github.com/kickoff-app/kickoff-core/internal/adapters/memory/bookingrepo"
	memcatalog "github.com/kickoff-app/kickoff-core/internal/adapters/memory/catalog"
	memidempotency "github.com/kickoff-app/kickoff-core/internal/adapters/memory/idempotency"
	postgres "github.com/kickoff-app/kickoff-core/internal/adapters/postgres"
	pgaccountrepo "github.com/kickoff-app/kickoff-core/internal/adapters/postgres/accountrepo"
	pgbookingrepo "github.com/kickoff-app/kickoff-core/internal/adapters/postgres/bookingrepo"
	pgidempotency "github.com/kickoff-app/kickoff-core/internal/adapters/postgres/idempotency"
	"github.com/kickoff-app/kickoff-core/internal/app/backend/accounts"
	"github.com/kickoff-app/kickoff-core/internal/app/backend/bookings"
	"github.com/kickoff-app/kickoff-core/internal/app/backend/catalog"
	"github.com/kickoff-app/kickoff-core/internal/domain"
	"github.com/kickoff-app/kickoff-core/internal/platform/auth/jwtverifier"
	"github.com/kickoff-app/kickoff-core/internal/platform/auth/sessiontoken"
	platformclock "github.com/kickoff-app/kickoff-core/internal/platform/clock"
	"github.com/kickoff-app/kickoff-core/internal/platform/config"
	"github.com/kickoff-app/kickoff-core/internal/platform/logger"
	accountrepoport "github.com/kickoff-app/kickoff-core/internal/ports/out/accountrepo"
	bookingrepoport "github.com/kickoff-app/kickoff-core/internal/ports/out/bookingrepo"
	idempotencyport "github.com/kickoff-app/kickoff-core/internal/ports/out/idempotency"
)

// catalogDays is how many days of fixtures the demo catalog carries.
const catalogDays = 7

func main() {
	cfg, err := config.LoadDevBackendConfig()
	if err != nil {
		// The logger is configured from cfg, so this one goes to a plain production logger.
		zap.NewExample().Fatal("invalid config", zap.Error(err))
	}
	log := logger.New(cfg.LogLevel, cfg.AppEnv)
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("devbackend exited", zap.Error(err))
		stop()
		_ = log.Sync()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.DevBackendConfig, log *zap.Logger) error {
	clk := platformclock.NewSystemClock()

	var (
		accountRepo accountrepoport.Repository
		bookingRepo bookingrepoport.Repository
		idemStore   idempotencyport.Store
	)
	switch cfg.StorageBackend {
	case "postgres":
		pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, postgres.PoolOptions{})
		if err != nil {
			return err
		}
		defer pool.Close()
		if err := postgres.EnsureSchema(ctx, pool); err != nil {
			return err
		}
		accountRepo = pgaccountrepo.NewRepo(pool)
		bookingRepo = pgbookingrepo.NewRepo(pool)
		idemStore = pgidempotency.NewStore(pool, cfg.SessionIssuer)
	default:
		accountRepo = memaccountrepo.NewRepo()
		bookingRepo = membookingrepo.NewRepo()
		idemStore = memidempotency.NewStore(clk, cfg.IdempotencyRetention)
	}

	sessions, err := sessiontoken.New([]byte(cfg.SessionSigningKey), sessiontoken.Options{
		Issuer: cfg.SessionIssuer,
		TTL:    cfg.SessionTTL,
		Clock:  clk,
	})
	if err != nil {
		return err
	}

	var google, apple httpapi.IDTokenVerifier
	switch cfg.AuthMode {
	case config.AuthModeDev:
		log.Warn("AUTH_MODE=dev: provider ID tokens are NOT verified")
		google, apple = httpapi.UnverifiedIDTokens{}, httpapi.UnverifiedIDTokens{}
	default:
		google, apple = jwtverifier.New(cfg.Google), jwtverifier.New(cfg.Apple)
	}

	accountSvc := accounts.NewService(accountRepo, clk, accounts.WithLogger(log))
	if err := seedConflicts(ctx, accountSvc, cfg.AppleConflictEmails); err != nil {
		return err
	}

	api, err := httpapi.NewServer(httpapi.Options{
		Catalog:  catalog.NewService(memcatalog.Demo(clk.Now(), catalogDays)),
		Accounts: accountSvc,
		Bookings: bookings.NewService(bookingRepo, clk, bookings.WithLogger(log), bookings.WithCancelCutoff(cfg.CancelCutoff)),
		Idem:     idemStore,
		Sessions: sessions,
		Google:   google,
		Apple:    apple,
		Clock:    clk,
		Logger:   log,
	})
	if err != nil {
		return err
	}

	var routerOpts httpapi.RouterOptions
	if cfg.DevUser != "" {
		log.Warn("DEV_USER set: authenticated routes accept X-Debug-User", zap.String("default_user", cfg.DevUser))
		routerOpts.AuthMiddleware = httpapi.NewDevSessionMiddleware(cfg.DevUser)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           httpapi.NewRouterWithOptions(api, routerOpts),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("devbackend listening",
			zap.String("addr", srv.Addr),
			zap.String("auth_mode", cfg.AuthMode),
			zap.String("storage", cfg.StorageBackend),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// seedConflicts registers each address as a Google account so an Apple login with the same
// email hits the account-conflict path.
func seedConflicts(ctx context.Context, svc *accounts.Service, emails []string) error {
	for _, email := range emails {
		_, err := svc.Login(ctx, accounts.Identity{
			Provider: domain.ProviderGoogle,
			Subject:  domain.SubjectID("seed:" + email),
			Email:    email,
		})
		if err != nil {
			return err
		}
	}
	return nil
}
