// Package googleexchange trades a Google authorization code (with its PKCE verifier) for an
// ID token.
package googleexchange

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"

	"github.com/kickoff-app/kickoff-core/internal/ports/out/identity"
)

var ErrNoIDToken = errors.New("googleexchange: token response has no id_token")

type Options struct {
	// TokenURL overrides Google's token endpoint.
	TokenURL   string
	HTTPClient *http.Client
}

type Exchanger struct {
	tokenURL string
	client   *http.Client
}

var _ identity.CodeExchanger = (*Exchanger)(nil)

func New(opts Options) *Exchanger {
	tokenURL := opts.TokenURL
	if tokenURL == "" {
		tokenURL = endpoints.Google.TokenURL
	}
	return &Exchanger{tokenURL: tokenURL, client: opts.HTTPClient}
}

func (e *Exchanger) Exchange(ctx context.Context, req identity.ExchangeRequest) (string, error) {
	if req.Code == "" {
		return "", fmt.Errorf("googleexchange: missing authorization code")
	}
	cfg := oauth2.Config{
		ClientID:    req.ClientID,
		RedirectURL: req.RedirectURI,
		Endpoint: oauth2.Endpoint{
			AuthURL:  endpoints.Google.AuthURL,
			TokenURL: e.tokenURL,
			// Installed-app clients have no secret; credentials go in the form body.
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
	if e.client != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, e.client)
	}

	var opts []oauth2.AuthCodeOption
	if req.CodeVerifier != "" {
		opts = append(opts, oauth2.VerifierOption(req.CodeVerifier))
	}
	tok, err := cfg.Exchange(ctx, req.Code, opts...)
	if err != nil {
		var re *oauth2.RetrieveError
		if errors.As(err, &re) && re.ErrorCode != "" {
			return "", fmt.Errorf("googleexchange: %s: %s", re.ErrorCode, re.ErrorDescription)
		}
		return "", fmt.Errorf("googleexchange: %w", err)
	}
	idToken, _ := tok.Extra("id_token").(string)
	if idToken == "" {
		return "", ErrNoIDToken
	}
	return idToken, nil
}
