package authapi

import (
	"context"
	"time"

	"github.com/kickoff-app/kickoff-core/internal/domain"
)

// AppleLogin is the credential forwarded after a native Apple sign-in.
// Apple only returns the user's name on the first authorization, so both are optional.
type AppleLogin struct {
	IDToken   string
	FirstName *string
	LastName  *string
}

// LoginResult is an accepted login.
type LoginResult struct {
	Token string
	// ExpiresIn is zero when the backend did not say.
	ExpiresIn time.Duration
	Profile   domain.Profile
}

// Authenticator exchanges identity-provider tokens for a backend session.
//
// A rejected credential is returned as an *apierr.Error of kind Backend carrying the
// backend status and reason.
type Authenticator interface {
	LoginWithGoogle(ctx context.Context, idToken string) (LoginResult, error)
	LoginWithApple(ctx context.Context, in AppleLogin) (LoginResult, error)
}
