package domain

import "strings"

// NormalizeHumanName trims leading/trailing whitespace and collapses internal whitespace runs.
// It is used for display-name normalization.
func NormalizeHumanName(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// DisplayNameFor derives a display name when the backend did not provide one.
func DisplayNameFor(p Profile) string {
	if n := NormalizeHumanName(p.DisplayName); n != "" {
		return n
	}
	if n := NormalizeHumanName(p.FirstName + " " + p.LastName); n != "" {
		return n
	}
	if at := strings.IndexByte(p.Email, '@'); at > 0 {
		return p.Email[:at]
	}
	return ""
}

// NormalizeProfile trims every field and fills DisplayName when the backend left it empty.
func NormalizeProfile(p Profile) Profile {
	p.ID = UserID(strings.TrimSpace(string(p.ID)))
	p.Email = strings.TrimSpace(p.Email)
	p.FirstName = NormalizeHumanName(p.FirstName)
	p.LastName = NormalizeHumanName(p.LastName)
	p.AvatarURL = strings.TrimSpace(p.AvatarURL)
	p.DisplayName = DisplayNameFor(p)
	return p
}
