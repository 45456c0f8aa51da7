package accountrepo

import (
	"testing"

	"github.com/kickoff-app/kickoff-core/internal/adapters/contracttest"
	accountrepoport "github.com/kickoff-app/kickoff-core/internal/ports/out/accountrepo"
)

func TestContract_AccountRepo(t *testing.T) {
	contracttest.RunAccountRepo(t, func(t *testing.T) (accountrepoport.Repository, func()) {
		t.Helper()
		return NewRepo(), nil
	})
}
