package domain

// SubjectID is the authenticated subject extracted from identity-token claims (typically "sub").
// We model it as an opaque identifier: its format is controlled by the IdP.
type SubjectID string

// UserID is the backend's identifier for an account.
type UserID string

// MatchID identifies a match in the catalog.
type MatchID string

// VenueID identifies a venue in the catalog.
type VenueID string

// ReservationID identifies a reservation owned by the signed-in user.
type ReservationID string
