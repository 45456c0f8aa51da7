package signin

import (
	"context"
	"sync"

	"github.com/kickoff-app/kickoff-core/internal/ports/out/authapi"
	"github.com/kickoff-app/kickoff-core/internal/ports/out/diagnostics"
	"github.com/kickoff-app/kickoff-core/internal/ports/out/identity"
)

type fakeGoogle struct {
	ready  bool
	result identity.GoogleResult
	err    error
	// during runs inside Prompt, before it returns.
	during func()
	calls  int
}

func (f *fakeGoogle) Ready() bool { return f.ready }

func (f *fakeGoogle) Prompt(ctx context.Context) (identity.GoogleResult, error) {
	f.calls++
	if f.during != nil {
		f.during()
	}
	return f.result, f.err
}

type fakeExchanger struct {
	got     identity.ExchangeRequest
	idToken string
	err     error
}

func (f *fakeExchanger) Exchange(ctx context.Context, req identity.ExchangeRequest) (string, error) {
	f.got = req
	return f.idToken, f.err
}

type fakeApple struct {
	available bool
	probeErr  error
	cred      identity.AppleCredential
	err       error
	panicMsg  string
	signIns   int
}

func (f *fakeApple) IsAvailable(ctx context.Context) (bool, error) { return f.available, f.probeErr }

func (f *fakeApple) SignIn(ctx context.Context) (identity.AppleCredential, error) {
	f.signIns++
	if f.panicMsg != "" {
		panic(f.panicMsg)
	}
	return f.cred, f.err
}

type fakeAuth struct {
	mu          sync.Mutex
	result      authapi.LoginResult
	err         error
	googleCalls []string
	appleCalls  []authapi.AppleLogin
}

func (f *fakeAuth) LoginWithGoogle(ctx context.Context, idToken string) (authapi.LoginResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.googleCalls = append(f.googleCalls, idToken)
	return f.result, f.err
}

func (f *fakeAuth) LoginWithApple(ctx context.Context, in authapi.AppleLogin) (authapi.LoginResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.appleCalls = append(f.appleCalls, in)
	return f.result, f.err
}

type recordingSink struct {
	mu      sync.Mutex
	reports []diagnostics.Report
	ctxErr  []error
}

func (s *recordingSink) Report(ctx context.Context, r diagnostics.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports = append(s.reports, r)
	s.ctxErr = append(s.ctxErr, ctx.Err())
	return nil
}

func (s *recordingSink) all() []diagnostics.Report {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]diagnostics.Report(nil), s.reports...)
}
