package domain

import "time"

// MatchSummary is the search-result projection of a match.
type MatchSummary struct {
	ID          MatchID
	Title       string
	Competition string
	HomeTeam    string
	AwayTeam    string
	KickoffAt   time.Time
	// VenueCount is the number of venues showing the match.
	VenueCount int
}

// VenueSummary is the search-result projection of a venue.
type VenueSummary struct {
	ID       VenueID
	Name     string
	Address  string
	City     string
	Rating   float64
	ImageURL *string
	OpenNow  bool
	// DistanceKm is only known when the backend has a location for the caller.
	DistanceKm *float64
}
