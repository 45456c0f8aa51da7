package domain

import "time"

type Provider string

const (
	ProviderGoogle Provider = "google"
	ProviderApple  Provider = "apple"
)

// Code3 is the three-letter provider tag used in support codes.
func (p Provider) Code3() string {
	switch p {
	case ProviderGoogle:
		return "GGL"
	case ProviderApple:
		return "APL"
	default:
		return "UNK"
	}
}

// DisplayName is the user-facing provider name.
func (p Provider) DisplayName() string {
	switch p {
	case ProviderGoogle:
		return "Google"
	case ProviderApple:
		return "Apple"
	default:
		return "Account"
	}
}

// Profile is the canonical account profile. Every backend shape is normalized into it
// at the HTTP boundary.
type Profile struct {
	ID          UserID
	Email       string
	FirstName   string
	LastName    string
	DisplayName string
	AvatarURL   string
}

// Session is an authenticated backend session.
type Session struct {
	Token     string
	Provider  Provider
	Profile   Profile
	CreatedAt time.Time
	// ExpiresAt is zero when the backend did not say.
	ExpiresAt time.Time
}

// Expired reports whether the session has a known expiry at or before now.
func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}
