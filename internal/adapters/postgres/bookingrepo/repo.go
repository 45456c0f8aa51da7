package bookingrepo

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/kickoff-app/kickoff-core/internal/adapters/postgres"
	"github.com/kickoff-app/kickoff-core/internal/domain"
	"github.com/kickoff-app/kickoff-core/internal/ports/out/bookingrepo"
)

// Repo is a Postgres implementation of bookingrepo.Repository.
type Repo struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

const selectBooking = `
	SELECT external_id, user_id, status, venue_name, match_title,
	       scheduled_at, party_size, reference, created_at, updated_at
	FROM kickoff_bookings
`

func (r *Repo) Create(ctx context.Context, b bookingrepo.Booking) error {
	if r.pool == nil {
		return errors.New("nil postgres pool")
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO kickoff_bookings (
			external_id,
			user_id,
			status,
			venue_name,
			match_title,
			scheduled_at,
			party_size,
			reference,
			created_at,
			updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`,
		string(b.ID),
		string(b.UserID),
		string(b.Status),
		b.VenueName,
		b.MatchTitle,
		b.ScheduledAt.UTC(),
		b.PartySize,
		b.Reference,
		b.CreatedAt.UTC(),
		b.UpdatedAt.UTC(),
	)
	if err != nil {
		if pe, ok := postgres.AsPgError(err); ok && pe.Code == postgres.UniqueViolationCode {
			return bookingrepo.ErrAlreadyExists
		}
		return err
	}
	return nil
}

func (r *Repo) Get(ctx context.Context, userID domain.UserID, id domain.ReservationID) (bookingrepo.Booking, error) {
	if r.pool == nil {
		return bookingrepo.Booking{}, errors.New("nil postgres pool")
	}
	b, err := scanBooking(r.pool.QueryRow(ctx, selectBooking+` WHERE user_id = $1 AND external_id = $2`, string(userID), string(id)))
	if errors.Is(err, pgx.ErrNoRows) {
		return bookingrepo.Booking{}, bookingrepo.ErrNotFound
	}
	return b, err
}

func (r *Repo) ListByUser(ctx context.Context, userID domain.UserID) ([]bookingrepo.Booking, error) {
	if r.pool == nil {
		return nil, errors.New("nil postgres pool")
	}
	rows, err := r.pool.Query(ctx, selectBooking+` WHERE user_id = $1 ORDER BY scheduled_at, external_id`, string(userID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]bookingrepo.Booking, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *Repo) UpdateStatus(ctx context.Context, userID domain.UserID, id domain.ReservationID, status domain.ReservationStatus, at time.Time) error {
	if r.pool == nil {
		return errors.New("nil postgres pool")
	}
	ct, err := r.pool.Exec(ctx, `
		UPDATE kickoff_bookings
		SET status = $3,
		    updated_at = $4
		WHERE user_id = $1 AND external_id = $2
	`,
		string(userID),
		string(id),
		string(status),
		at.UTC(),
	)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return bookingrepo.ErrNotFound
	}
	return nil
}

func scanBooking(row pgx.Row) (bookingrepo.Booking, error) {
	var (
		b      bookingrepo.Booking
		id     string
		userID string
		status string
		party  int32
	)
	if err := row.Scan(
		&id,
		&userID,
		&status,
		&b.VenueName,
		&b.MatchTitle,
		&b.ScheduledAt,
		&party,
		&b.Reference,
		&b.CreatedAt,
		&b.UpdatedAt,
	); err != nil {
		return bookingrepo.Booking{}, err
	}
	b.ID = domain.ReservationID(id)
	b.UserID = domain.UserID(userID)
	b.Status = domain.ReservationStatus(status)
	b.PartySize = int(party)
	b.ScheduledAt = b.ScheduledAt.UTC()
	b.CreatedAt = b.CreatedAt.UTC()
	b.UpdatedAt = b.UpdatedAt.UTC()
	return b, nil
}
