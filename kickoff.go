// Package kickoff is the client core of the Kickoff app. An App holds everything one signed-in
// (or signed-out) app session needs: the backend client, the session cache, the sign-in,
// reservations and account services, and a factory for search screens.
package kickoff

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	amqpdiagnostics "github.com/kickoff-app/kickoff-core/internal/adapters/amqp/diagnostics"
	"github.com/kickoff-app/kickoff-core/internal/adapters/backendhttp"
	boltsessionstore "github.com/kickoff-app/kickoff-core/internal/adapters/bolt/sessionstore"
	memsessionstore "github.com/kickoff-app/kickoff-core/internal/adapters/memory/sessionstore"
	natsdiagnostics "github.com/kickoff-app/kickoff-core/internal/adapters/nats/diagnostics"
	"github.com/kickoff-app/kickoff-core/internal/adapters/oauth/googleexchange"
	postgres "github.com/kickoff-app/kickoff-core/internal/adapters/postgres"
	pgsessionstore "github.com/kickoff-app/kickoff-core/internal/adapters/postgres/sessionstore"
	redissessionstore "github.com/kickoff-app/kickoff-core/internal/adapters/redis/sessionstore"
	logdiagnostics "github.com/kickoff-app/kickoff-core/internal/adapters/zaplog/diagnostics"
	"github.com/kickoff-app/kickoff-core/internal/app/account"
	"github.com/kickoff-app/kickoff-core/internal/app/reservations"
	"github.com/kickoff-app/kickoff-core/internal/app/search"
	"github.com/kickoff-app/kickoff-core/internal/app/session"
	"github.com/kickoff-app/kickoff-core/internal/app/signin"
	platformclock "github.com/kickoff-app/kickoff-core/internal/platform/clock"
	"github.com/kickoff-app/kickoff-core/internal/platform/config"
	"github.com/kickoff-app/kickoff-core/internal/platform/logger"
	clockport "github.com/kickoff-app/kickoff-core/internal/ports/out/clock"
	"github.com/kickoff-app/kickoff-core/internal/ports/out/diagnostics"
	"github.com/kickoff-app/kickoff-core/internal/ports/out/identity"
	"github.com/kickoff-app/kickoff-core/internal/ports/out/sessionstore"
)

// Platform is what the host bridges in from the native side. Either SDK may be nil when the
// platform does not offer it; the matching sign-in then fails with a CFG support code.
type Platform struct {
	Google identity.GoogleSDK
	Apple  identity.AppleSDK
	// Exchanger overrides the Google authorization-code exchanger.
	Exchanger identity.CodeExchanger
}

type App struct {
	Config config.Config
	Log    *zap.Logger
	Clock  clockport.Clock

	Backend      *backendhttp.Client
	Sessions     *session.Manager
	SignIn       *signin.Coordinator
	Reservations *reservations.Client
	Account      *account.Service

	closers []func() error
}

type Option func(*options)

type options struct {
	clock      clockport.Clock
	log        *zap.Logger
	httpClient *http.Client
}

// WithClock replaces the system clock (tests drive debounce and banners with a manual one).
func WithClock(c clockport.Clock) Option { return func(o *options) { o.clock = c } }

// WithLogger replaces the logger built from cfg.
func WithLogger(l *zap.Logger) Option { return func(o *options) { o.log = l } }

// WithHTTPClient replaces the backend HTTP client.
func WithHTTPClient(c *http.Client) Option { return func(o *options) { o.httpClient = c } }

// New validates cfg and connects the session store and diagnostics sink it names. On error
// everything opened so far is closed again.
func New(ctx context.Context, cfg config.Config, p Platform, opts ...Option) (_ *App, err error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.clock == nil {
		o.clock = platformclock.NewSystemClock()
	}
	if o.log == nil {
		o.log = logger.New(cfg.LogLevel, cfg.AppEnv)
	}

	a := &App{Config: cfg, Log: o.log, Clock: o.clock}
	defer func() {
		if err != nil {
			_ = a.Close()
		}
	}()

	store, err := a.openSessionStore(ctx)
	if err != nil {
		return nil, err
	}
	sink, err := a.openDiagnostics()
	if err != nil {
		return nil, err
	}

	a.Sessions = session.NewManager(store, a.Clock, session.WithLogger(a.Log))
	a.Backend, err = backendhttp.New(cfg.APIBaseURL, backendhttp.Options{
		HTTPClient: o.httpClient,
		Timeout:    cfg.HTTPTimeout,
		Tokens:     a.Sessions,
		Logger:     a.Log.Named("backend"),
	})
	if err != nil {
		return nil, err
	}

	exchanger := p.Exchanger
	if exchanger == nil {
		exchanger = googleexchange.New(googleexchange.Options{TokenURL: cfg.Google.TokenURL, HTTPClient: o.httpClient})
	}
	signinOpts := []signin.Option{
		signin.WithDiagnostics(sink),
		signin.WithLogger(a.Log.Named("signin")),
	}
	if p.Google != nil {
		signinOpts = append(signinOpts, signin.WithGoogle(p.Google, exchanger))
	}
	if p.Apple != nil {
		signinOpts = append(signinOpts, signin.WithApple(p.Apple))
	}
	a.SignIn = signin.New(signin.Config{
		Platform:          cfg.Platform,
		GoogleClientIDs:   cfg.Google.ClientIDs,
		GoogleRedirectURI: cfg.Google.RedirectURI,
	}, a.Backend, a.Sessions, a.Clock, signinOpts...)

	a.Reservations = reservations.New(a.Backend, a.Clock, reservations.WithLogger(a.Log.Named("reservations")))
	a.closers = append(a.closers, func() error { a.Reservations.Close(); return nil })
	a.Account = account.NewService(a.Backend, account.WithProfileCache(a.Sessions), account.WithLogger(a.Log.Named("account")))
	return a, nil
}

// NewSearch starts a search screen. The caller closes it when the screen goes away.
func (a *App) NewSearch(onChange func(search.State)) *search.Coordinator {
	opts := []search.Option{
		search.WithDebounce(a.Config.SearchDebounce),
		search.WithPageSize(a.Config.SearchPageSize),
		search.WithLogger(a.Log.Named("search")),
	}
	if onChange != nil {
		opts = append(opts, search.OnChange(onChange))
	}
	return search.New(a.Backend, a.Clock, opts...)
}

// SignOut forgets the cached session.
func (a *App) SignOut(ctx context.Context) error {
	return a.Sessions.Clear(ctx)
}

// Close releases the session store and diagnostics connections, last opened first.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

func (a *App) openSessionStore(ctx context.Context) (sessionstore.Store, error) {
	cfg := a.Config
	switch cfg.SessionBackend {
	case config.SessionBolt:
		s, err := boltsessionstore.Open(cfg.SessionBoltPath, a.Clock)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, s.Close)
		return s, nil
	case config.SessionRedis:
		s, err := redissessionstore.New(ctx, redissessionstore.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, s.Close)
		return s, nil
	case config.SessionPostgres:
		pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, postgres.PoolOptions{MaxConns: 4})
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func() error { pool.Close(); return nil })
		if err := postgres.EnsureSchema(ctx, pool); err != nil {
			return nil, err
		}
		return pgsessionstore.NewStore(pool, a.Clock), nil
	case config.SessionMemory:
		return memsessionstore.NewStore(a.Clock), nil
	default:
		return nil, fmt.Errorf("kickoff: unknown session backend %q", cfg.SessionBackend)
	}
}

func (a *App) openDiagnostics() (diagnostics.Sink, error) {
	cfg := a.Config
	switch cfg.DiagnosticsSink {
	case config.SinkAMQP:
		s, err := amqpdiagnostics.Dial(cfg.RabbitMQURL, "", a.Log)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, s.Close)
		return s, nil
	case config.SinkNATS:
		s, err := natsdiagnostics.Connect(cfg.NATSURL, "", a.Log)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, s.Close)
		return s, nil
	case config.SinkLog:
		return logdiagnostics.NewSink(a.Log), nil
	default:
		return nil, fmt.Errorf("kickoff: unknown diagnostics sink %q", cfg.DiagnosticsSink)
	}
}
