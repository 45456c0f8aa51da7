package search

import "github.com/kickoff-app/kickoff-core/internal/domain"

// State is a point-in-time view of the search screen.
type State struct {
	RawQuery       string
	DebouncedQuery string
	ActiveTab      domain.Tab
	// DateFilter is nil when no day is selected.
	DateFilter  *domain.Date
	VenueFilter domain.VenueFilter

	Matches        []domain.MatchSummary
	Venues         []domain.VenueSummary
	MatchPage      int
	VenuePage      int
	HasMoreMatches bool
	HasMoreVenues  bool

	// Loading is a fresh (page 1) fetch in flight; LoadingMore an append.
	Loading     bool
	LoadingMore bool
	Err         error
	// ShowRetry replaces the result list with a retry control after a first-page failure.
	ShowRetry bool
}

// PreviewLimit is how many items per facet the all tab shows inline.
const PreviewLimit = 2

// Preview is the inline all-tab view. SeeAll* is set when the dedicated tab has more to show.
type Preview struct {
	Matches       []domain.MatchSummary
	Venues        []domain.VenueSummary
	SeeAllMatches bool
	SeeAllVenues  bool
}

func previewOf(s State) Preview {
	p := Preview{
		Matches:       s.Matches,
		Venues:        s.Venues,
		SeeAllMatches: s.HasMoreMatches || len(s.Matches) > PreviewLimit,
		SeeAllVenues:  s.HasMoreVenues || len(s.Venues) > PreviewLimit,
	}
	if len(p.Matches) > PreviewLimit {
		p.Matches = p.Matches[:PreviewLimit]
	}
	if len(p.Venues) > PreviewLimit {
		p.Venues = p.Venues[:PreviewLimit]
	}
	return p
}

func (s State) clone() State {
	out := s
	out.Matches = append([]domain.MatchSummary(nil), s.Matches...)
	out.Venues = append([]domain.VenueSummary(nil), s.Venues...)
	if s.DateFilter != nil {
		d := *s.DateFilter
		out.DateFilter = &d
	}
	return out
}
