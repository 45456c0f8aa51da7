package bookingrepo

import (
	"testing"

	"github.com/kickoff-app/kickoff-core/internal/adapters/contracttest"
	"github.com/kickoff-app/kickoff-core/internal/adapters/postgres/testutil"
	bookingrepoport "github.com/kickoff-app/kickoff-core/internal/ports/out/bookingrepo"
)

func TestContract_PostgresBookingRepo(t *testing.T) {
	pool := testutil.OpenMigratedPool(t)

	contracttest.RunBookingRepo(t, func(t *testing.T) (bookingrepoport.Repository, func()) {
		t.Helper()
		return NewRepo(pool), nil
	})
}
