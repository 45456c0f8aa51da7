package backendhttp

import (
	"context"
	"net/http"
	"net/url"

	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/kickoff-app/kickoff-core/internal/adapters/wire"
	"github.com/kickoff-app/kickoff-core/internal/domain"
	"github.com/kickoff-app/kickoff-core/internal/platform/apierr"
	"github.com/kickoff-app/kickoff-core/internal/ports/out/searchapi"
)

var _ searchapi.Searcher = (*Client)(nil)

type param struct {
	name  string
	value any
}

func (c *Client) Search(ctx context.Context, req searchapi.Request) (searchapi.Response, error) {
	const op = "GET /search"

	q := url.Values{}
	params := []param{
		{"query", req.Query},
		{"tab", string(req.Tab)},
		{"page", req.Page},
		{"pageSize", req.PageSize},
	}
	// The date filter only narrows matches.
	if req.Date != nil && req.Tab == domain.TabMatches {
		params = append(params, param{"date", openapi_types.Date{Time: req.Date.Start(nil)}})
	}
	for _, p := range params {
		if err := queryParam(q, p.name, p.value); err != nil {
			return searchapi.Response{}, apierr.Transport(op, err)
		}
	}

	var body wire.SearchResponse
	if _, err := c.do(ctx, call{op: op, method: http.MethodGet, segments: []string{"search"}, query: q, out: &body}); err != nil {
		return searchapi.Response{}, err
	}

	out := searchapi.Response{
		Matches:        make([]domain.MatchSummary, 0, len(body.Matches)),
		Venues:         make([]domain.VenueSummary, 0, len(body.Venues)),
		HasMoreMatches: body.HasMoreMatches,
		HasMoreVenues:  body.HasMoreVenues,
	}
	for _, m := range body.Matches {
		out.Matches = append(out.Matches, domain.MatchSummary{
			ID:          domain.MatchID(m.ID),
			Title:       m.Title,
			Competition: m.Competition,
			HomeTeam:    m.HomeTeam,
			AwayTeam:    m.AwayTeam,
			KickoffAt:   m.KickoffAt,
			VenueCount:  m.VenueCount,
		})
	}
	for _, v := range body.Venues {
		out.Venues = append(out.Venues, domain.VenueSummary{
			ID:         domain.VenueID(v.ID),
			Name:       v.Name,
			Address:    v.Address,
			City:       v.City,
			Rating:     v.Rating,
			ImageURL:   wire.Ptr(v.ImageURL),
			OpenNow:    v.OpenNow,
			DistanceKm: wire.Ptr(v.DistanceKm),
		})
	}
	return out, nil
}
