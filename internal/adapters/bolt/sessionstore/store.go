// Package sessionstore keeps the session cache in a local bbolt file, the on-device option.
package sessionstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/kickoff-app/kickoff-core/internal/ports/out/clock"
	"github.com/kickoff-app/kickoff-core/internal/ports/out/sessionstore"
)

const bucketSessions = "sessions"

type envelope struct {
	Value     []byte    `json:"v"`
	ExpiresAt time.Time `json:"exp,omitempty"`
}

type Store struct {
	db    *bolt.DB
	clock clock.Clock
}

func Open(dbPath string, clk clock.Clock) (*Store, error) {
	db, err := bolt.Open(dbPath, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening session database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists([]byte(bucketSessions)); err != nil {
			return fmt.Errorf("creating sessions bucket: %w", err)
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db, clock: clk}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	_ = ctx
	var env envelope
	found := false
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket([]byte(bucketSessions)).Get([]byte(key))
		if data == nil {
			return nil
		}
		found = true
		return json.Unmarshal(data, &env)
	})
	if err != nil {
		return nil, fmt.Errorf("reading session entry: %w", err)
	}
	if !found {
		return nil, sessionstore.ErrNotFound
	}
	if !env.ExpiresAt.IsZero() && !s.clock.Now().Before(env.ExpiresAt) {
		_ = s.Delete(ctx, key)
		return nil, sessionstore.ErrNotFound
	}
	return env.Value, nil
}

func (s *Store) Put(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	_ = ctx
	env := envelope{Value: value}
	if ttl > 0 {
		env.ExpiresAt = s.clock.Now().Add(ttl).UTC()
	}
	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshaling session entry: %w", err)
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketSessions)).Put([]byte(key), data)
	})
}

func (s *Store) Delete(ctx context.Context, key string) error {
	_ = ctx
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketSessions)).Delete([]byte(key))
	})
}
