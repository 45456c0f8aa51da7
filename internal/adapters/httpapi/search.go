package httpapi

import (
	"net/http"

	"github.com/oapi-codegen/runtime"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/kickoff-app/kickoff-core/internal/adapters/wire"
	"github.com/kickoff-app/kickoff-core/internal/app/backend/catalog"
	"github.com/kickoff-app/kickoff-core/internal/domain"
)

func (s *Server) search(w http.ResponseWriter, r *http.Request) {
	// Every parameter is optional, so each binds into a pointer that stays nil when absent.
	q := r.URL.Query()
	var (
		query    *string
		tab      *string
		page     *int
		pageSize *int
		date     *openapi_types.Date
	)
	for _, p := range []struct {
		name string
		dest any
	}{
		{"query", &query},
		{"tab", &tab},
		{"page", &page},
		{"pageSize", &pageSize},
		{"date", &date},
	} {
		if err := runtime.BindQueryParameter("form", true, false, p.name, q, p.dest); err != nil {
			writeError(w, r, http.StatusBadRequest, "INVALID_PARAMETER", "invalid "+p.name+" parameter")
			return
		}
	}

	req := catalog.Request{Query: deref(query), Tab: domain.Tab(deref(tab)), Page: deref(page), PageSize: deref(pageSize)}
	if date != nil {
		d := domain.DateOf(date.Time)
		req.Date = &d
	}
	res, err := s.Catalog.Search(r.Context(), req)
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}

	out := wire.SearchResponse{
		Matches:        make([]wire.Match, 0, len(res.Matches)),
		Venues:         make([]wire.Venue, 0, len(res.Venues)),
		HasMoreMatches: res.HasMoreMatches,
		HasMoreVenues:  res.HasMoreVenues,
	}
	for _, m := range res.Matches {
		out.Matches = append(out.Matches, wire.Match{
			ID:          string(m.ID),
			Title:       m.Title,
			Competition: m.Competition,
			HomeTeam:    m.HomeTeam,
			AwayTeam:    m.AwayTeam,
			KickoffAt:   m.KickoffAt,
			VenueCount:  m.VenueCount,
		})
	}
	for _, v := range res.Venues {
		out.Venues = append(out.Venues, wire.Venue{
			ID:         string(v.ID),
			Name:       v.Name,
			Address:    v.Address,
			City:       v.City,
			Rating:     v.Rating,
			ImageURL:   wire.Nullable(v.ImageURL),
			OpenNow:    v.OpenNow,
			DistanceKm: wire.Nullable(v.DistanceKm),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
