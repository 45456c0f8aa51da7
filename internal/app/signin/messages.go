package signin

import (
	"fmt"

	"github.com/kickoff-app/kickoff-core/internal/domain"
	"github.com/kickoff-app/kickoff-core/internal/platform/textsafe"
)

const (
	msgCanceled   = "Sign-in was canceled."
	msgInProgress = "A sign-in is already in progress."
)

// failureMessage is the user-facing text for a failed attempt, before the support code.
func failureMessage(p domain.Provider, stage Stage, status int, reason string) string {
	name := p.DisplayName()
	switch stage {
	case StageConfig:
		return fmt.Sprintf("%s sign-in isn't available on this device.", name)
	case StageReady:
		return fmt.Sprintf("%s sign-in is still starting up. Please try again in a moment.", name)
	case StageToken:
		return fmt.Sprintf("We couldn't get your %s credentials. Please try again.", name)
	case StageServer:
		switch {
		case status == 0:
			return "We couldn't reach Kickoff. Check your connection and try again."
		case status == 409:
			// Account conflicts are the one backend reason users can act on.
			if r := textsafe.Clean(reason, 0); r != "" {
				return r
			}
			return "This email is already linked to a different sign-in method."
		case status == 401 || status == 403:
			return fmt.Sprintf("Kickoff couldn't verify your %s account.", name)
		default:
			return fmt.Sprintf("Kickoff couldn't complete %s sign-in. Please try again.", name)
		}
	default:
		return "Something went wrong while signing in. Please try again."
	}
}

func withSupportCode(msg, code string) string {
	return fmt.Sprintf("%s (Support code: %s)", msg, code)
}
