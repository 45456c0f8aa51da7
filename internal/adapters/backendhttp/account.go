package backendhttp

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/kickoff-app/kickoff-core/internal/adapters/wire"
	"github.com/kickoff-app/kickoff-core/internal/domain"
	"github.com/kickoff-app/kickoff-core/internal/platform/apierr"
	"github.com/kickoff-app/kickoff-core/internal/ports/out/accountapi"
)

var _ accountapi.API = (*Client)(nil)

func (c *Client) Profile(ctx context.Context) (domain.Profile, error) {
	const op = "GET /me"
	var raw json.RawMessage
	status, err := c.do(ctx, call{op: op, method: http.MethodGet, segments: []string{"me"}, out: &raw})
	if err != nil {
		return domain.Profile{}, err
	}
	p, err := DecodeProfile(raw)
	if err != nil {
		return domain.Profile{}, apierr.Decode(op, status, err)
	}
	return p, nil
}

func (c *Client) PrivacyPreferences(ctx context.Context) (accountapi.PrivacyPreferences, error) {
	var body wire.PrivacyPreferences
	if _, err := c.do(ctx, call{op: "GET /privacy-preferences", method: http.MethodGet, segments: []string{"privacy-preferences"}, out: &body}); err != nil {
		return accountapi.PrivacyPreferences{}, err
	}
	return accountapi.PrivacyPreferences{AccountDeletionGraceDays: wire.Ptr(body.AccountDeletionGraceDays)}, nil
}
