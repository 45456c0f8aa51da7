package searchapi

import (
	"context"

	"github.com/kickoff-app/kickoff-core/internal/domain"
)

// Request is one page of a faceted search.
type Request struct {
	Query    string
	Tab      domain.Tab
	Page     int
	PageSize int
	// Date is only sent for the matches tab; nil means no date filter.
	Date *domain.Date
}

// Response carries the page for every facet the tab covers, in server order.
type Response struct {
	Matches        []domain.MatchSummary
	Venues         []domain.VenueSummary
	HasMoreMatches bool
	HasMoreVenues  bool
}

// Searcher runs catalog searches against the backend.
type Searcher interface {
	Search(ctx context.Context, req Request) (Response, error)
}
