// Package catalog pages search results over the match and venue catalog.
package catalog

import (
	"context"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/kickoff-app/kickoff-core/internal/domain"
	"github.com/kickoff-app/kickoff-core/internal/ports/out/catalogrepo"
)

const (
	DefaultPageSize = 15
	MaxPageSize     = 50
)

type Request struct {
	Query    string
	Tab      domain.Tab
	Page     int
	PageSize int
	// Date narrows matches; it is ignored unless Tab is matches.
	Date *domain.Date
}

type Result struct {
	Matches        []domain.MatchSummary
	Venues         []domain.VenueSummary
	HasMoreMatches bool
	HasMoreVenues  bool
}

type Service struct {
	repo catalogrepo.Repository
}

func NewService(repo catalogrepo.Repository) *Service {
	return &Service{repo: repo}
}

// Search returns one page of every facet the tab covers. Facets outside the tab come back
// empty with no more pages.
func (s *Service) Search(ctx context.Context, req Request) (Result, error) {
	if req.Tab == "" {
		req.Tab = domain.TabAll
	}
	if !req.Tab.Valid() {
		return Result{}, &Error{Status: 400, Code: "INVALID_TAB", Message: "tab must be one of all, matches, venues"}
	}
	if req.Page == 0 {
		req.Page = 1
	}
	if req.Page < 1 {
		return Result{}, &Error{Status: 400, Code: "INVALID_PAGE", Message: "page must be at least 1"}
	}
	if req.PageSize == 0 {
		req.PageSize = DefaultPageSize
	}
	if req.PageSize < 1 || req.PageSize > MaxPageSize {
		return Result{}, &Error{Status: 400, Code: "INVALID_PAGE_SIZE", Message: "pageSize must be between 1 and 50"}
	}

	q := catalogrepo.Query{
		Text:   strings.TrimSpace(req.Query),
		Offset: (req.Page - 1) * req.PageSize,
		Limit:  req.PageSize,
	}
	if req.Tab == domain.TabMatches {
		q.Date = req.Date
	}

	out := Result{
		Matches: []domain.MatchSummary{},
		Venues:  []domain.VenueSummary{},
	}
	g, gctx := errgroup.WithContext(ctx)
	if req.Tab.CoversMatches() {
		g.Go(func() error {
			ms, more, err := s.repo.SearchMatches(gctx, q)
			if err != nil {
				return err
			}
			out.Matches, out.HasMoreMatches = ms, more
			return nil
		})
	}
	if req.Tab.CoversVenues() {
		g.Go(func() error {
			vs, more, err := s.repo.SearchVenues(gctx, q)
			if err != nil {
				return err
			}
			out.Venues, out.HasMoreVenues = vs, more
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, err
	}
	return out, nil
}
