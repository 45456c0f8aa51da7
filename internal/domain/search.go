package domain

import (
	"fmt"
	"time"
)

// Tab selects which result facet(s) a search covers.
type Tab string

const (
	TabAll     Tab = "all"
	TabMatches Tab = "matches"
	TabVenues  Tab = "venues"
)

func (t Tab) Valid() bool {
	switch t {
	case TabAll, TabMatches, TabVenues:
		return true
	}
	return false
}

// CoversMatches reports whether results for this tab include the matches facet.
func (t Tab) CoversMatches() bool { return t == TabAll || t == TabMatches }

// CoversVenues reports whether results for this tab include the venues facet.
func (t Tab) CoversVenues() bool { return t == TabAll || t == TabVenues }

// VenueFilter is a display-only facet of the venues tab. It is not sent to the backend.
type VenueFilter string

const (
	VenueFilterNearby   VenueFilter = "nearby"
	VenueFilterTopRated VenueFilter = "top_rated"
	VenueFilterOpenNow  VenueFilter = "open_now"
)

func (f VenueFilter) Valid() bool {
	switch f {
	case VenueFilterNearby, VenueFilterTopRated, VenueFilterOpenNow:
		return true
	}
	return false
}

// Date is a calendar day without a time zone.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

const dateLayout = "2006-01-02"

// DateOf returns the calendar day of t in t's location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return DateOf(t), nil
}

// Start returns midnight of the day in loc.
func (d Date) Start(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
}

func (d Date) AddDays(n int) Date {
	return DateOf(d.Start(time.UTC).AddDate(0, 0, n))
}

func (d Date) Before(o Date) bool {
	return d.Start(time.UTC).Before(o.Start(time.UTC))
}

func (d Date) IsZero() bool { return d == Date{} }

func (d Date) String() string { return d.Start(time.UTC).Format(dateLayout) }

// UpcomingDates returns n consecutive days starting with the day of now.
func UpcomingDates(now time.Time, n int) []Date {
	out := make([]Date, 0, n)
	today := DateOf(now)
	for i := 0; i < n; i++ {
		out = append(out, today.AddDays(i))
	}
	return out
}
