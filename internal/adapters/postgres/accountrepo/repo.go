package accountrepo

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/kickoff-app/kickoff-core/internal/adapters/postgres"
	"github.com/kickoff-app/kickoff-core/internal/domain"
	"github.com/kickoff-app/kickoff-core/internal/ports/out/accountrepo"
)

// Repo is a Postgres implementation of accountrepo.Repository.
type Repo struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

const selectAccount = `
	SELECT external_id, provider, subject, email, first_name, last_name,
	       display_name, avatar_url, deletion_grace_days, created_at, updated_at
	FROM kickoff_accounts
`

func (r *Repo) Create(ctx context.Context, a accountrepo.Account) error {
	if r.pool == nil {
		return errors.New("nil postgres pool")
	}
	if a.ID == "" {
		return errors.New("account id is required")
	}

	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO kickoff_accounts (
				external_id,
				provider,
				subject,
				email,
				first_name,
				last_name,
				display_name,
				avatar_url,
				deletion_grace_days,
				created_at,
				updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		`,
			string(a.ID),
			string(a.Provider),
			string(a.Subject),
			strings.TrimSpace(a.Email),
			a.FirstName,
			a.LastName,
			a.DisplayName,
			a.AvatarURL,
			a.DeletionGraceDays,
			a.CreatedAt.UTC(),
			a.UpdatedAt.UTC(),
		)
		if err != nil {
			if pe, ok := postgres.AsPgError(err); ok && pe.Code == postgres.UniqueViolationCode {
				switch pe.ConstraintName {
				case "kickoff_accounts_email_unique":
					return accountrepo.ErrEmailTaken
				case "kickoff_accounts_subject_unique", "kickoff_accounts_external_id_unique":
					return accountrepo.ErrAlreadyExists
				}
			}
			return err
		}
		return nil
	})
}

func (r *Repo) GetByID(ctx context.Context, id domain.UserID) (accountrepo.Account, error) {
	if r.pool == nil {
		return accountrepo.Account{}, errors.New("nil postgres pool")
	}
	return scanAccount(r.pool.QueryRow(ctx, selectAccount+` WHERE external_id = $1`, string(id)))
}

func (r *Repo) GetBySubject(ctx context.Context, provider domain.Provider, subject domain.SubjectID) (accountrepo.Account, error) {
	if r.pool == nil {
		return accountrepo.Account{}, errors.New("nil postgres pool")
	}
	return scanAccount(r.pool.QueryRow(ctx, selectAccount+` WHERE provider = $1 AND subject = $2`, string(provider), string(subject)))
}

func (r *Repo) GetByEmail(ctx context.Context, email string) (accountrepo.Account, error) {
	if r.pool == nil {
		return accountrepo.Account{}, errors.New("nil postgres pool")
	}
	email = strings.TrimSpace(email)
	if email == "" {
		return accountrepo.Account{}, accountrepo.ErrNotFound
	}
	return scanAccount(r.pool.QueryRow(ctx, selectAccount+` WHERE email <> '' AND lower(email) = lower($1)`, email))
}

func scanAccount(row pgx.Row) (accountrepo.Account, error) {
	var (
		a        accountrepo.Account
		id       string
		provider string
		subject  string
		grace    *int32
	)
	if err := row.Scan(
		&id,
		&provider,
		&subject,
		&a.Email,
		&a.FirstName,
		&a.LastName,
		&a.DisplayName,
		&a.AvatarURL,
		&grace,
		&a.CreatedAt,
		&a.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return accountrepo.Account{}, accountrepo.ErrNotFound
		}
		return accountrepo.Account{}, err
	}
	a.ID = domain.UserID(id)
	a.Provider = domain.Provider(provider)
	a.Subject = domain.SubjectID(subject)
	if grace != nil {
		v := int(*grace)
		a.DeletionGraceDays = &v
	}
	a.CreatedAt = a.CreatedAt.UTC()
	a.UpdatedAt = a.UpdatedAt.UTC()
	return a, nil
}
