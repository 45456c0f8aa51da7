package signin

import (
	"context"

	"github.com/kickoff-app/kickoff-core/internal/domain"
	"github.com/kickoff-app/kickoff-core/internal/ports/out/identity"
)

// googleClientID returns the client ID registered for the configured platform and the name
// of the setting it comes from.
func (c *Coordinator) googleClientID() (id, key string) {
	ids := c.cfg.GoogleClientIDs
	switch c.cfg.Platform {
	case identity.PlatformAndroid:
		return ids.Android, "GOOGLE_ANDROID_CLIENT_ID"
	case identity.PlatformWeb:
		return ids.Web, "GOOGLE_WEB_CLIENT_ID"
	default:
		return ids.IOS, "GOOGLE_IOS_CLIENT_ID"
	}
}

// SignInWithGoogle runs one Google sign-in attempt.
func (c *Coordinator) SignInWithGoogle(ctx context.Context) (res Result) {
	a, ok := c.begin(domain.ProviderGoogle)
	if !ok {
		return Result{Error: msgInProgress}
	}
	defer a.end()
	defer a.recoverInto(ctx, &res)

	clientID, key := c.googleClientID()
	if clientID == "" {
		return a.fail(ctx, StageConfig, 0, "missing "+key)
	}
	if c.google == nil {
		return a.fail(ctx, StageConfig, 0, "google sdk not linked")
	}
	if !c.google.Ready() {
		return a.fail(ctx, StageReady, 0, "authorization request not initialized")
	}

	a.sdkStarted()
	out, err := c.google.Prompt(ctx)
	if err != nil {
		if isCancel(err) {
			return a.canceled()
		}
		return a.fail(ctx, StageException, 0, err.Error())
	}

	switch out.Outcome {
	case identity.GoogleCancel, identity.GoogleDismiss:
		return a.canceled()
	case identity.GoogleSuccess:
	case identity.GoogleError:
		return a.fail(ctx, StageException, 0, out.ErrorText)
	default:
		return a.fail(ctx, StageException, 0, "unexpected outcome "+string(out.Outcome))
	}

	idToken := out.IDToken
	if idToken == "" && out.Code != "" {
		if c.exchanger == nil {
			return a.fail(ctx, StageToken, 0, "code exchange not configured")
		}
		redirect := out.RedirectURI
		if redirect == "" {
			redirect = c.cfg.GoogleRedirectURI
		}
		idToken, err = c.exchanger.Exchange(ctx, identity.ExchangeRequest{
			ClientID:     clientID,
			Code:         out.Code,
			RedirectURI:  redirect,
			CodeVerifier: out.CodeVerifier,
		})
		if err != nil {
			return a.fail(ctx, StageToken, 0, err.Error())
		}
	}
	if idToken == "" {
		return a.fail(ctx, StageToken, 0, "no id token or authorization code")
	}

	login, err := c.auth.LoginWithGoogle(ctx, idToken)
	if err != nil {
		return a.backendFailure(ctx, err)
	}
	return a.complete(ctx, login)
}
