package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS kickoff_sessions (
		session_key TEXT PRIMARY KEY,
		value       BYTEA NOT NULL,
		expires_at  TIMESTAMPTZ NULL,
		updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS kickoff_sessions_expires_at_idx
		ON kickoff_sessions (expires_at) WHERE expires_at IS NOT NULL`,
	`CREATE TABLE IF NOT EXISTS kickoff_idempotency_keys (
		idempotency_key TEXT NOT NULL,
		subject_iss     TEXT NOT NULL,
		subject_sub     TEXT NOT NULL,
		method          TEXT NOT NULL,
		path            TEXT NOT NULL,
		status_code     INTEGER NOT NULL,
		content_type    TEXT NOT NULL,
		body            BYTEA NOT NULL,
		created_at      TIMESTAMPTZ NOT NULL,
		PRIMARY KEY (idempotency_key, subject_iss, subject_sub, method, path)
	)`,
	`CREATE TABLE IF NOT EXISTS kickoff_accounts (
		id                  BIGSERIAL PRIMARY KEY,
		external_id         TEXT NOT NULL,
		provider            TEXT NOT NULL,
		subject             TEXT NOT NULL,
		email               TEXT NOT NULL DEFAULT '',
		first_name          TEXT NOT NULL DEFAULT '',
		last_name           TEXT NOT NULL DEFAULT '',
		display_name        TEXT NOT NULL DEFAULT '',
		avatar_url          TEXT NULL,
		deletion_grace_days INTEGER NULL,
		created_at          TIMESTAMPTZ NOT NULL,
		updated_at          TIMESTAMPTZ NOT NULL,
		CONSTRAINT kickoff_accounts_external_id_unique UNIQUE (external_id),
		CONSTRAINT kickoff_accounts_subject_unique UNIQUE (provider, subject)
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS kickoff_accounts_email_unique
		ON kickoff_accounts (lower(email)) WHERE email <> ''`,
	`CREATE TABLE IF NOT EXISTS kickoff_bookings (
		external_id  TEXT PRIMARY KEY,
		user_id      TEXT NOT NULL,
		status       TEXT NOT NULL,
		venue_name   TEXT NOT NULL,
		match_title  TEXT NOT NULL,
		scheduled_at TIMESTAMPTZ NOT NULL,
		party_size   INTEGER NOT NULL,
		reference    TEXT NOT NULL,
		created_at   TIMESTAMPTZ NOT NULL,
		updated_at   TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS kickoff_bookings_user_idx
		ON kickoff_bookings (user_id, scheduled_at, external_id)`,
}

// EnsureSchema creates the tables the Postgres adapters use. It is idempotent.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range schema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("postgres: ensure schema: %w", err)
		}
	}
	return nil
}
