package accountrepo

import (
	"context"
	"errors"
	"time"

	"github.com/kickoff-app/kickoff-core/internal/domain"
)

var (
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists means the account ID or the provider subject is already bound.
	ErrAlreadyExists = errors.New("already exists")
	ErrEmailTaken    = errors.New("email already registered")
)

// Account is a backend user, bound to exactly one provider subject.
type Account struct {
	ID          domain.UserID
	Provider    domain.Provider
	Subject     domain.SubjectID
	Email       string
	FirstName   string
	LastName    string
	DisplayName string
	AvatarURL   *string

	// DeletionGraceDays is nil when the account uses the service default.
	DeletionGraceDays *int

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Repository is the persistence port for backend accounts.
type Repository interface {
	Create(ctx context.Context, a Account) error
	GetByID(ctx context.Context, id domain.UserID) (Account, error)
	GetBySubject(ctx context.Context, provider domain.Provider, subject domain.SubjectID) (Account, error)
	// GetByEmail matches case-insensitively.
	GetByEmail(ctx context.Context, email string) (Account, error)
}
