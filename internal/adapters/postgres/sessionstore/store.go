// Package sessionstore keeps the session cache in Postgres, for hosts that share one
// session across processes.
package sessionstore

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kickoff-app/kickoff-core/internal/ports/out/clock"
	"github.com/kickoff-app/kickoff-core/internal/ports/out/sessionstore"
)

// Store is a Postgres implementation of sessionstore.Store.
type Store struct {
	pool  *pgxpool.Pool
	clock clock.Clock
}

func NewStore(pool *pgxpool.Pool, clk clock.Clock) *Store {
	return &Store{pool: pool, clock: clk}
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	if s.pool == nil {
		return nil, errors.New("nil postgres pool")
	}
	var value []byte
	err := s.pool.QueryRow(ctx, `
		SELECT value
		FROM kickoff_sessions
		WHERE session_key = $1
		  AND (expires_at IS NULL OR expires_at > $2)
	`, key, s.clock.Now().UTC()).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sessionstore.ErrNotFound
		}
		return nil, err
	}
	return value, nil
}

func (s *Store) Put(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if s.pool == nil {
		return errors.New("nil postgres pool")
	}
	now := s.clock.Now().UTC()
	var expiresAt *time.Time
	if ttl > 0 {
		t := now.Add(ttl)
		expiresAt = &t
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO kickoff_sessions (session_key, value, expires_at, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (session_key)
		DO UPDATE SET
			value = EXCLUDED.value,
			expires_at = EXCLUDED.expires_at,
			updated_at = EXCLUDED.updated_at
	`, key, value, expiresAt, now)
	return err
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if s.pool == nil {
		return errors.New("nil postgres pool")
	}
	_, err := s.pool.Exec(ctx, `DELETE FROM kickoff_sessions WHERE session_key = $1`, key)
	return err
}

// PurgeExpired removes expired rows and returns how many were deleted.
func (s *Store) PurgeExpired(ctx context.Context) (int64, error) {
	if s.pool == nil {
		return 0, errors.New("nil postgres pool")
	}
	tag, err := s.pool.Exec(ctx, `DELETE FROM kickoff_sessions WHERE expires_at IS NOT NULL AND expires_at <= $1`, s.clock.Now().UTC())
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
