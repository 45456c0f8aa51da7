// Package signin drives the native Google and Apple sign-in SDKs to a backend session and
// turns every failure into a message with a support code.
package signin

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kickoff-app/kickoff-core/internal/domain"
	"github.com/kickoff-app/kickoff-core/internal/platform/apierr"
	"github.com/kickoff-app/kickoff-core/internal/platform/logger"
	"github.com/kickoff-app/kickoff-core/internal/ports/out/authapi"
	"github.com/kickoff-app/kickoff-core/internal/ports/out/clock"
	"github.com/kickoff-app/kickoff-core/internal/ports/out/diagnostics"
	"github.com/kickoff-app/kickoff-core/internal/ports/out/identity"
)

// Result is what the sign-in screen renders. Failures carry an Error already suffixed with
// the support code; a cancellation carries a plain Error and no code.
type Result struct {
	Success     bool
	Session     domain.Session
	Error       string
	SupportCode string
	Canceled    bool
}

// SessionSaver persists an accepted login.
type SessionSaver interface {
	SaveLogin(ctx context.Context, provider domain.Provider, res authapi.LoginResult) (domain.Session, error)
}

type Config struct {
	Platform          identity.Platform
	GoogleClientIDs   identity.GoogleClientIDs
	GoogleRedirectURI string
}

type Coordinator struct {
	cfg      Config
	auth     authapi.Authenticator
	sessions SessionSaver
	clock    clock.Clock
	log      *zap.Logger

	google    identity.GoogleSDK
	exchanger identity.CodeExchanger
	apple     identity.AppleSDK
	sink      diagnostics.Sink

	busy    atomic.Bool
	loading atomic.Bool
}

type Option func(*Coordinator)

func WithGoogle(sdk identity.GoogleSDK, exchanger identity.CodeExchanger) Option {
	return func(c *Coordinator) { c.google, c.exchanger = sdk, exchanger }
}

func WithApple(sdk identity.AppleSDK) Option {
	return func(c *Coordinator) { c.apple = sdk }
}

func WithDiagnostics(sink diagnostics.Sink) Option {
	return func(c *Coordinator) { c.sink = sink }
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Coordinator) { c.log = logger.OrNop(l) }
}

func New(cfg Config, auth authapi.Authenticator, sessions SessionSaver, clk clock.Clock, opts ...Option) *Coordinator {
	c := &Coordinator{
		cfg:      cfg,
		auth:     auth,
		sessions: sessions,
		clock:    clk,
		log:      zap.NewNop(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Loading reports whether a provider SDK or the backend is working on an attempt.
func (c *Coordinator) Loading() bool { return c.loading.Load() }

// attempt is one sign-in, from button press to result. It is never persisted.
type attempt struct {
	c        *Coordinator
	provider domain.Provider
	id       string
}

func (c *Coordinator) begin(p domain.Provider) (*attempt, bool) {
	if !c.busy.CompareAndSwap(false, true) {
		return nil, false
	}
	return &attempt{c: c, provider: p, id: uuid.NewString()}, true
}

func (a *attempt) end() {
	a.c.loading.Store(false)
	a.c.busy.Store(false)
}

// sdkStarted marks the start of the loading window; end clears it on every path.
func (a *attempt) sdkStarted() { a.c.loading.Store(true) }

func (a *attempt) canceled() Result {
	return Result{Error: msgCanceled, Canceled: true}
}

func (a *attempt) fail(ctx context.Context, stage Stage, status int, reason string) Result {
	at := a.c.clock.Now()
	code := SupportCode(a.provider, stage, status, reason, at)

	a.c.log.Warn("sign-in failed",
		zap.String("support_code", code),
		zap.String("stage", string(stage)),
		zap.String("provider", string(a.provider)),
		zap.String("attempt_id", a.id),
		zap.Int("status", status),
		zap.String("reason", reason),
	)
	if a.c.sink != nil {
		// The report outlives a canceled screen context.
		err := a.c.sink.Report(context.WithoutCancel(ctx), diagnostics.Report{
			SupportCode: code,
			Provider:    string(a.provider),
			Stage:       string(stage),
			Status:      status,
			Reason:      reason,
			AttemptID:   a.id,
			OccurredAt:  at.UTC(),
		})
		if err != nil {
			a.c.log.Debug("diagnostics report failed", zap.String("support_code", code), zap.Error(err))
		}
	}

	return Result{
		Error:       withSupportCode(failureMessage(a.provider, stage, status, reason), code),
		SupportCode: code,
	}
}

// recoverInto converts a panic anywhere in the attempt into an EXCP failure.
func (a *attempt) recoverInto(ctx context.Context, res *Result) {
	if r := recover(); r != nil {
		*res = a.fail(ctx, StageException, 0, fmt.Sprintf("panic: %v", r))
	}
}

// backendFailure classifies a rejected login. Transport failures have no status.
func (a *attempt) backendFailure(ctx context.Context, err error) Result {
	if ae, ok := apierr.As(err); ok {
		reason := ae.Reason
		if reason == "" && ae.Err != nil {
			reason = ae.Err.Error()
		}
		return a.fail(ctx, StageServer, ae.Status, reason)
	}
	return a.fail(ctx, StageServer, 0, err.Error())
}

func (a *attempt) complete(ctx context.Context, res authapi.LoginResult) Result {
	s, err := a.c.sessions.SaveLogin(ctx, a.provider, res)
	if err != nil {
		return a.fail(ctx, StageException, 0, "save session: "+err.Error())
	}
	a.c.log.Info("sign-in succeeded",
		zap.String("provider", string(a.provider)),
		zap.String("attempt_id", a.id),
		zap.String("user_id", string(s.Profile.ID)),
	)
	return Result{Success: true, Session: s}
}

func isCancel(err error) bool {
	return errors.Is(err, identity.ErrCanceled) || errors.Is(err, context.Canceled)
}
