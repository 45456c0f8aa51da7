// Package identity describes the native identity SDKs the host platform bridges in.
package identity

import (
	"context"
	"errors"
)

// ErrCanceled is returned by SDK calls the user dismissed.
var ErrCanceled = errors.New("identity: sign-in canceled by user")

type Platform string

const (
	PlatformIOS     Platform = "ios"
	PlatformAndroid Platform = "android"
	PlatformWeb     Platform = "web"
)

func (p Platform) Valid() bool {
	switch p {
	case PlatformIOS, PlatformAndroid, PlatformWeb:
		return true
	}
	return false
}

// GoogleClientIDs are the OAuth client identifiers registered per platform.
type GoogleClientIDs struct {
	Web     string
	IOS     string
	Android string
}

type GoogleOutcome string

const (
	GoogleSuccess GoogleOutcome = "success"
	GoogleCancel  GoogleOutcome = "cancel"
	GoogleDismiss GoogleOutcome = "dismiss"
	GoogleError   GoogleOutcome = "error"
)

// GoogleResult is what the authorization prompt resolves to. A success carries either
// an ID token or an authorization code (with the PKCE verifier that produced it).
type GoogleResult struct {
	Outcome      GoogleOutcome
	IDToken      string
	Code         string
	CodeVerifier string
	// RedirectURI is the URI the SDK used; empty means the configured one.
	RedirectURI string
	// ErrorText describes an error outcome.
	ErrorText string
}

// GoogleSDK is the authorization-request object of the Google SDK.
type GoogleSDK interface {
	// Ready reports whether the authorization request has been initialized.
	Ready() bool
	Prompt(ctx context.Context) (GoogleResult, error)
}

// AppleCredential is the result of a native Apple sign-in.
type AppleCredential struct {
	IdentityToken string
	GivenName     string
	FamilyName    string
}

// AppleSDK is the native Sign in with Apple module.
type AppleSDK interface {
	IsAvailable(ctx context.Context) (bool, error)
	// SignIn returns ErrCanceled when the user dismisses the sheet.
	SignIn(ctx context.Context) (AppleCredential, error)
}

// ExchangeRequest is an authorization-code + PKCE token request.
type ExchangeRequest struct {
	ClientID     string
	Code         string
	RedirectURI  string
	CodeVerifier string
}

// CodeExchanger trades an authorization code for an ID token.
type CodeExchanger interface {
	Exchange(ctx context.Context, req ExchangeRequest) (idToken string, err error)
}
