package catalogrepo

import (
	"context"

	"github.com/kickoff-app/kickoff-core/internal/domain"
)

// Query selects one page of a facet. Text matches every whitespace-separated token,
// case-insensitively; empty text matches everything.
type Query struct {
	Text string
	// Date limits matches to one calendar day (UTC). Venues ignore it.
	Date   *domain.Date
	Offset int
	Limit  int
}

// Repository serves the searchable catalog.
type Repository interface {
	// SearchMatches returns a page ordered by kickoff time and whether more follow.
	SearchMatches(ctx context.Context, q Query) ([]domain.MatchSummary, bool, error)
	// SearchVenues returns a page ordered by rating (best first) and whether more follow.
	SearchVenues(ctx context.Context, q Query) ([]domain.VenueSummary, bool, error)
}
