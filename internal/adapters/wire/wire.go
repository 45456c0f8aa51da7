// Package wire holds the JSON shapes of the backend REST contract. The HTTP client decodes
// them and the dev backend encodes them, so both sides agree by construction.
package wire

import (
	"encoding/json"
	"time"

	"github.com/oapi-codegen/nullable"
)

type Match struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Competition string    `json:"competition,omitempty"`
	HomeTeam    string    `json:"homeTeam,omitempty"`
	AwayTeam    string    `json:"awayTeam,omitempty"`
	KickoffAt   time.Time `json:"kickoffAt"`
	VenueCount  int       `json:"venueCount"`
}

type Venue struct {
	ID         string                     `json:"id"`
	Name       string                     `json:"name"`
	Address    string                     `json:"address,omitempty"`
	City       string                     `json:"city,omitempty"`
	Rating     float64                    `json:"rating"`
	ImageURL   nullable.Nullable[string]  `json:"imageUrl,omitempty"`
	OpenNow    bool                       `json:"openNow"`
	DistanceKm nullable.Nullable[float64] `json:"distanceKm,omitempty"`
}

type SearchResponse struct {
	Matches        []Match `json:"matches"`
	Venues         []Venue `json:"venues"`
	HasMoreMatches bool    `json:"hasMoreMatches"`
	HasMoreVenues  bool    `json:"hasMoreVenues"`
}

type GoogleLoginRequest struct {
	IDToken string `json:"idToken"`
}

type AppleLoginRequest struct {
	IDToken   string                    `json:"idToken"`
	FirstName nullable.Nullable[string] `json:"firstName,omitempty"`
	LastName  nullable.Nullable[string] `json:"lastName,omitempty"`
}

// LoginResponse is both the accepted and the rejected login body. A rejection may arrive
// with HTTP 200, so Success is authoritative.
type LoginResponse struct {
	Success   bool                      `json:"success"`
	Token     string                    `json:"token,omitempty"`
	ExpiresIn nullable.Nullable[int64]  `json:"expiresIn,omitempty"`
	User      json.RawMessage           `json:"user,omitempty"`
	Status    nullable.Nullable[int]    `json:"status,omitempty"`
	Reason    nullable.Nullable[string] `json:"reason,omitempty"`
}

// User is the profile shape the dev backend emits. Clients accept looser shapes; see
// backendhttp.DecodeProfile.
type User struct {
	ID          string                    `json:"id"`
	Email       string                    `json:"email,omitempty"`
	FirstName   string                    `json:"firstName,omitempty"`
	LastName    string                    `json:"lastName,omitempty"`
	DisplayName string                    `json:"displayName,omitempty"`
	AvatarURL   nullable.Nullable[string] `json:"avatarUrl,omitempty"`
}

type MeResponse struct {
	User User `json:"user"`
}

type Reservation struct {
	ID          string    `json:"id"`
	Status      string    `json:"status"`
	VenueName   string    `json:"venueName"`
	MatchTitle  string    `json:"matchTitle"`
	ScheduledAt time.Time `json:"scheduledAt"`
	PartySize   int       `json:"partySize"`
	Reference   string    `json:"reference"`
}

type ReservationsResponse struct {
	Reservations []Reservation `json:"reservations"`
}

type ReservationDetail struct {
	Reservation
	QRCode string `json:"qrCode"`
}

type PrivacyPreferences struct {
	AccountDeletionGraceDays nullable.Nullable[int] `json:"account_deletion_grace_days,omitempty"`
}

type ErrorBody struct {
	Code      string                    `json:"code"`
	Message   string                    `json:"message"`
	RequestID nullable.Nullable[string] `json:"requestId,omitempty"`
}

type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// Nullable wraps an optional value for the wire.
func Nullable[T any](p *T) nullable.Nullable[T] {
	var out nullable.Nullable[T]
	if p != nil {
		out.Set(*p)
	}
	return out
}

// Ptr unwraps a wire value; unspecified and null both become nil.
func Ptr[T any](n nullable.Nullable[T]) *T {
	if !n.IsSpecified() || n.IsNull() {
		return nil
	}
	v, err := n.Get()
	if err != nil {
		return nil
	}
	return &v
}
