// Package textsafe turns backend-supplied text into something safe to put in front of a user.
package textsafe

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// MaxReasonRunes caps backend reasons shown in banners and sign-in errors.
const MaxReasonRunes = 160

var strict = bluemonday.StrictPolicy()

// Clean strips markup, control characters and runs of whitespace, then truncates to max runes
// (max <= 0 means MaxReasonRunes).
func Clean(s string, max int) string {
	if max <= 0 {
		max = MaxReasonRunes
	}
	s = strings.ReplaceAll(s, "\x00", "")
	s = html.UnescapeString(strict.Sanitize(s))
	s = strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f {
			return ' '
		}
		return r
	}, s)
	s = strings.Join(strings.Fields(s), " ")

	rs := []rune(s)
	if len(rs) > max {
		s = strings.TrimSpace(string(rs[:max-1])) + "…"
	}
	return s
}
