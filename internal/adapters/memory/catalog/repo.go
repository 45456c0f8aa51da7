// Package catalog is an in-memory searchable catalog of matches and venues.
package catalog

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/kickoff-app/kickoff-core/internal/domain"
	"github.com/kickoff-app/kickoff-core/internal/ports/out/catalogrepo"
)

// Repo is safe for concurrent use. Added entries are kept in search order.
type Repo struct {
	mu      sync.RWMutex
	matches []domain.MatchSummary
	venues  []domain.VenueSummary
}

func NewRepo() *Repo {
	return &Repo{}
}

func (r *Repo) AddMatches(ms ...domain.MatchSummary) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.matches = append(r.matches, ms...)
	sort.SliceStable(r.matches, func(i, j int) bool {
		a, b := r.matches[i], r.matches[j]
		if a.KickoffAt.Equal(b.KickoffAt) {
			return a.ID < b.ID
		}
		return a.KickoffAt.Before(b.KickoffAt)
	})
}

func (r *Repo) AddVenues(vs ...domain.VenueSummary) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, v := range vs {
		r.venues = append(r.venues, cloneVenue(v))
	}
	sort.SliceStable(r.venues, func(i, j int) bool {
		a, b := r.venues[i], r.venues[j]
		if a.Rating == b.Rating {
			return a.ID < b.ID
		}
		return a.Rating > b.Rating
	})
}

func (r *Repo) SearchMatches(ctx context.Context, q catalogrepo.Query) ([]domain.MatchSummary, bool, error) {
	_ = ctx
	tokens := tokenize(q.Text)

	r.mu.RLock()
	defer r.mu.RUnlock()

	hits := make([]domain.MatchSummary, 0)
	for _, m := range r.matches {
		if q.Date != nil && domain.DateOf(m.KickoffAt.UTC()) != *q.Date {
			continue
		}
		if matchesAllTokens(tokens, m.Title, m.Competition, m.HomeTeam, m.AwayTeam) {
			hits = append(hits, m)
		}
	}
	page, more := window(len(hits), q.Offset, q.Limit)
	return hits[page.lo:page.hi], more, nil
}

func (r *Repo) SearchVenues(ctx context.Context, q catalogrepo.Query) ([]domain.VenueSummary, bool, error) {
	_ = ctx
	tokens := tokenize(q.Text)

	r.mu.RLock()
	defer r.mu.RUnlock()

	hits := make([]domain.VenueSummary, 0)
	for _, v := range r.venues {
		if matchesAllTokens(tokens, v.Name, v.Address, v.City) {
			hits = append(hits, cloneVenue(v))
		}
	}
	page, more := window(len(hits), q.Offset, q.Limit)
	return hits[page.lo:page.hi], more, nil
}

type bounds struct{ lo, hi int }

// window clamps [offset, offset+limit) to n. A non-positive limit means "the rest".
func window(n, offset, limit int) (bounds, bool) {
	if offset < 0 {
		offset = 0
	}
	if offset > n {
		offset = n
	}
	hi := n
	if limit > 0 && offset+limit < n {
		hi = offset + limit
	}
	return bounds{lo: offset, hi: hi}, hi < n
}

func tokenize(s string) []string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return nil
	}
	return strings.Fields(s)
}

// matchesAllTokens reports whether every token appears in at least one field.
func matchesAllTokens(tokens []string, fields ...string) bool {
	hay := strings.ToLower(strings.Join(fields, "\n"))
	for _, t := range tokens {
		if !strings.Contains(hay, t) {
			return false
		}
	}
	return true
}

func cloneVenue(v domain.VenueSummary) domain.VenueSummary {
	out := v
	if v.ImageURL != nil {
		s := *v.ImageURL
		out.ImageURL = &s
	}
	if v.DistanceKm != nil {
		d := *v.DistanceKm
		out.DistanceKm = &d
	}
	return out
}

var _ catalogrepo.Repository = (*Repo)(nil)

// kickoffHours are the local slots demo fixtures are spread over.
var kickoffHours = []int{12, 15, 17, 20}

var demoTeams = [][2]string{
	{"Arsenal", "Chelsea"},
	{"Liverpool", "Everton"},
	{"Manchester City", "Manchester United"},
	{"Tottenham", "West Ham"},
	{"Newcastle", "Sunderland"},
	{"Aston Villa", "Birmingham"},
	{"Real Madrid", "Barcelona"},
	{"Atletico Madrid", "Sevilla"},
	{"Bayern Munich", "Borussia Dortmund"},
	{"Inter", "AC Milan"},
	{"Juventus", "Torino"},
	{"PSG", "Marseille"},
	{"Celtic", "Rangers"},
	{"Benfica", "Porto"},
	{"Ajax", "Feyenoord"},
}

var demoCompetitions = []string{"Premier League", "La Liga", "Bundesliga", "Serie A", "Ligue 1", "Champions League"}

var demoVenues = []struct {
	name, address, city string
	rating              float64
	openNow             bool
	distanceKm          float64
}{
	{"The Corner Flag", "12 Market St", "London", 4.8, true, 0.4},
	{"Offside Tavern", "3 Station Rd", "London", 4.6, true, 1.2},
	{"The Dugout", "88 High St", "London", 4.5, false, 2.1},
	{"Golden Boot Bar", "5 Canal Walk", "Manchester", 4.7, true, 0.9},
	{"Half Time Pub", "21 Mill Ln", "Manchester", 4.1, false, 3.3},
	{"Penalty Spot", "40 Bridge St", "Liverpool", 4.3, true, 1.8},
	{"The Kop End", "9 Anfield Rd", "Liverpool", 4.9, true, 0.2},
	{"Extra Time", "17 Quay Side", "Newcastle", 3.9, false, 5.6},
	{"The Crossbar", "2 Park Pl", "Birmingham", 4.2, true, 2.7},
	{"Stoppage Time", "66 Church St", "Leeds", 4.0, true, 4.4},
	{"Red Card Lounge", "30 King St", "Glasgow", 3.8, false, 6.0},
	{"The Terrace", "14 Harbour Rd", "Bristol", 4.4, true, 1.5},
	{"Fan Zone", "7 Union St", "Aberdeen", 3.7, true, 7.2},
	{"Kickoff Cantina", "50 Old St", "London", 4.6, false, 0.8},
	{"The Captain's Armband", "11 Rose Ln", "Sheffield", 4.1, true, 3.9},
	{"Clean Sheet Cafe", "25 Elm Rd", "Nottingham", 4.0, false, 2.4},
	{"Hat-Trick House", "4 Bell St", "Leicester", 4.5, true, 1.1},
	{"Through Ball", "19 Castle St", "Cardiff", 4.2, true, 2.9},
	{"The Sweeper", "33 Dock Rd", "Southampton", 3.9, true, 4.8},
	{"Injury Time Inn", "8 Green Ln", "Brighton", 4.3, false, 3.0},
}

// Demo returns a catalog with fixtures spread over the days starting at now, enough to
// page through several screens of both facets.
func Demo(now time.Time, days int) *Repo {
	r := NewRepo()
	today := domain.DateOf(now.UTC())
	ms := make([]domain.MatchSummary, 0, days*len(kickoffHours))
	n := 0
	for d := 0; d < days; d++ {
		day := today.AddDays(d)
		for _, h := range kickoffHours {
			teams := demoTeams[n%len(demoTeams)]
			comp := demoCompetitions[n%len(demoCompetitions)]
			ms = append(ms, domain.MatchSummary{
				ID:          domain.MatchID(fmt.Sprintf("m-%s-%02d", day, h)),
				Title:       teams[0] + " vs " + teams[1],
				Competition: comp,
				HomeTeam:    teams[0],
				AwayTeam:    teams[1],
				KickoffAt:   day.Start(time.UTC).Add(time.Duration(h) * time.Hour),
				VenueCount:  3 + n%9,
			})
			n++
		}
	}
	r.AddMatches(ms...)

	vs := make([]domain.VenueSummary, 0, len(demoVenues))
	for i, v := range demoVenues {
		dist := v.distanceKm
		vs = append(vs, domain.VenueSummary{
			ID:         domain.VenueID(fmt.Sprintf("v-%02d", i+1)),
			Name:       v.name,
			Address:    v.address,
			City:       v.city,
			Rating:     v.rating,
			OpenNow:    v.openNow,
			DistanceKm: &dist,
		})
	}
	r.AddVenues(vs...)
	return r
}
