package sessionstore

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound indicates the key is absent or expired.
var ErrNotFound = errors.New("session entry not found")

// Store is a small key/value cache for auth/session data.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	// Put writes value under key with last-write-wins semantics. ttl <= 0 means no expiry.
	Put(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}
