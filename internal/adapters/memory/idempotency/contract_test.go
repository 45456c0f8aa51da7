package idempotency

import (
	"testing"
	"time"

	"github.com/kickoff-app/kickoff-core/internal/adapters/contracttest"
	memclock "github.com/kickoff-app/kickoff-core/internal/adapters/memory/clock"
	idempotencyport "github.com/kickoff-app/kickoff-core/internal/ports/out/idempotency"
)

func TestContract_IdempotencyStore(t *testing.T) {
	contracttest.RunIdempotencyStore(t, func(t *testing.T) (idempotencyport.Store, func()) {
		t.Helper()
		return NewStore(memclock.NewManualClock(time.Unix(200, 0).UTC()), time.Hour), nil
	})
}
