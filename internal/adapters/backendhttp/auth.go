package backendhttp

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/kickoff-app/kickoff-core/internal/adapters/wire"
	"github.com/kickoff-app/kickoff-core/internal/platform/apierr"
	"github.com/kickoff-app/kickoff-core/internal/ports/out/authapi"
)

var _ authapi.Authenticator = (*Client)(nil)

var errMissingSession = errors.New("login accepted without a session token and user")

func (c *Client) LoginWithGoogle(ctx context.Context, idToken string) (authapi.LoginResult, error) {
	return c.login(ctx, "POST /auth/login/google", "google", wire.GoogleLoginRequest{IDToken: idToken})
}

func (c *Client) LoginWithApple(ctx context.Context, in authapi.AppleLogin) (authapi.LoginResult, error) {
	return c.login(ctx, "POST /auth/login/apple", "apple", wire.AppleLoginRequest{
		IDToken:   in.IDToken,
		FirstName: wire.Nullable(in.FirstName),
		LastName:  wire.Nullable(in.LastName),
	})
}

func (c *Client) login(ctx context.Context, op, provider string, in any) (authapi.LoginResult, error) {
	var body wire.LoginResponse
	status, err := c.do(ctx, call{
		op:       op,
		method:   http.MethodPost,
		segments: []string{"auth", "login", provider},
		in:       in,
		out:      &body,
	})
	if err != nil {
		return authapi.LoginResult{}, err
	}

	// Rejections can arrive with HTTP 200; the body status wins when present.
	if !body.Success {
		if s := wire.Ptr(body.Status); s != nil {
			status = *s
		}
		reason := ""
		if r := wire.Ptr(body.Reason); r != nil {
			reason = *r
		}
		return authapi.LoginResult{}, apierr.Backend(op, status, "", reason)
	}
	if body.Token == "" || len(body.User) == 0 {
		return authapi.LoginResult{}, apierr.Decode(op, status, errMissingSession)
	}

	profile, err := DecodeProfile(body.User)
	if err != nil {
		return authapi.LoginResult{}, apierr.Decode(op, status, err)
	}
	out := authapi.LoginResult{Token: body.Token, Profile: profile}
	if s := wire.Ptr(body.ExpiresIn); s != nil && *s > 0 {
		out.ExpiresIn = time.Duration(*s) * time.Second
	}
	return out, nil
}
