package accountrepo

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/kickoff-app/kickoff-core/internal/domain"
	"github.com/kickoff-app/kickoff-core/internal/ports/out/accountrepo"
)

type subjectKey struct {
	provider domain.Provider
	subject  domain.SubjectID
}

// Repo is an in-memory implementation of accountrepo.Repository.
// It is safe for concurrent use.
type Repo struct {
	mu sync.RWMutex

	byID      map[domain.UserID]accountrepo.Account
	idBySub   map[subjectKey]domain.UserID
	idByEmail map[string]domain.UserID
}

func NewRepo() *Repo {
	return &Repo{
		byID:      make(map[domain.UserID]accountrepo.Account),
		idBySub:   make(map[subjectKey]domain.UserID),
		idByEmail: make(map[string]domain.UserID),
	}
}

func (r *Repo) Create(ctx context.Context, a accountrepo.Account) error {
	_ = ctx
	if a.ID == "" {
		return errors.New("account id is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[a.ID]; ok {
		return accountrepo.ErrAlreadyExists
	}
	sk := subjectKey{provider: a.Provider, subject: a.Subject}
	if _, ok := r.idBySub[sk]; ok {
		return accountrepo.ErrAlreadyExists
	}
	email := emailKey(a.Email)
	if email != "" {
		if _, ok := r.idByEmail[email]; ok {
			return accountrepo.ErrEmailTaken
		}
	}

	r.byID[a.ID] = cloneAccount(a)
	r.idBySub[sk] = a.ID
	if email != "" {
		r.idByEmail[email] = a.ID
	}
	return nil
}

func (r *Repo) GetByID(ctx context.Context, id domain.UserID) (accountrepo.Account, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.byID[id]
	if !ok {
		return accountrepo.Account{}, accountrepo.ErrNotFound
	}
	return cloneAccount(a), nil
}

func (r *Repo) GetBySubject(ctx context.Context, provider domain.Provider, subject domain.SubjectID) (accountrepo.Account, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.idBySub[subjectKey{provider: provider, subject: subject}]
	if !ok {
		return accountrepo.Account{}, accountrepo.ErrNotFound
	}
	return r.getLocked(id)
}

func (r *Repo) GetByEmail(ctx context.Context, email string) (accountrepo.Account, error) {
	_ = ctx
	k := emailKey(email)
	if k == "" {
		return accountrepo.Account{}, accountrepo.ErrNotFound
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.idByEmail[k]
	if !ok {
		return accountrepo.Account{}, accountrepo.ErrNotFound
	}
	return r.getLocked(id)
}

func (r *Repo) getLocked(id domain.UserID) (accountrepo.Account, error) {
	a, ok := r.byID[id]
	if !ok {
		return accountrepo.Account{}, accountrepo.ErrNotFound
	}
	return cloneAccount(a), nil
}

func emailKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func cloneAccount(a accountrepo.Account) accountrepo.Account {
	out := a
	out.AvatarURL = cloneStringPtr(a.AvatarURL)
	if a.DeletionGraceDays != nil {
		v := *a.DeletionGraceDays
		out.DeletionGraceDays = &v
	}
	return out
}

func cloneStringPtr(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
