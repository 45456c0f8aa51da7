package signin

import (
	"context"
	"strings"

	"github.com/kickoff-app/kickoff-core/internal/domain"
	"github.com/kickoff-app/kickoff-core/internal/ports/out/authapi"
)

// SignInWithApple runs one Sign in with Apple attempt.
func (c *Coordinator) SignInWithApple(ctx context.Context) (res Result) {
	a, ok := c.begin(domain.ProviderApple)
	if !ok {
		return Result{Error: msgInProgress}
	}
	defer a.end()
	defer a.recoverInto(ctx, &res)

	if c.apple == nil {
		return a.fail(ctx, StageConfig, 0, "apple sdk not linked")
	}
	available, err := c.apple.IsAvailable(ctx)
	if err != nil {
		return a.fail(ctx, StageConfig, 0, "availability probe: "+err.Error())
	}
	if !available {
		return a.fail(ctx, StageConfig, 0, "sign in with apple unavailable")
	}

	a.sdkStarted()
	cred, err := c.apple.SignIn(ctx)
	if err != nil {
		if isCancel(err) {
			return a.canceled()
		}
		return a.fail(ctx, StageException, 0, err.Error())
	}
	if cred.IdentityToken == "" {
		return a.fail(ctx, StageToken, 0, "no identity token")
	}

	// Apple only shares the name on the first authorization.
	login, err := c.auth.LoginWithApple(ctx, authapi.AppleLogin{
		IDToken:   cred.IdentityToken,
		FirstName: optional(cred.GivenName),
		LastName:  optional(cred.FamilyName),
	})
	if err != nil {
		return a.backendFailure(ctx, err)
	}
	return a.complete(ctx, login)
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
