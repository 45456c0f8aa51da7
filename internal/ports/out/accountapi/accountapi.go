package accountapi

import (
	"context"

	"github.com/kickoff-app/kickoff-core/internal/domain"
)

type PrivacyPreferences struct {
	// AccountDeletionGraceDays is nil when the backend omits it.
	AccountDeletionGraceDays *int
}

type API interface {
	Profile(ctx context.Context) (domain.Profile, error)
	PrivacyPreferences(ctx context.Context) (PrivacyPreferences, error)
}
