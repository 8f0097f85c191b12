package cache

import (
	"context"
	"errors"
	"time"
)

var ErrMiss = errors.New("cache miss")

// Store is a key/value cache with per-entry TTL. Values are JSON-encoded by
// every implementation, so what Get decodes into dest is a copy.
//
// A Store is an optimization only: it never reads from or writes to the
// durable record store, and callers must stay correct when every Get misses.
type Store interface {
	// Get decodes the value under key into dest, or returns ErrMiss.
	Get(ctx context.Context, key string, dest any) error
	// Set overwrites key. ttl <= 0 means no expiry.
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	// Remove deletes key. Removing an absent key is not an error.
	Remove(ctx context.Context, key string) error
	// CompareAndDelete atomically deletes key if its current value equals
	// expected, and reports whether it did.
	CompareAndDelete(ctx context.Context, key string, expected any) (bool, error)
}

func UserKey(email string) string {
	return "user:" + email
}

func ResetTokenKey(subject string) string {
	return "resetToken:" + subject
}

// Get is the typed form of Store.Get. A miss is reported as ok == false with
// a nil error.
func Get[T any](ctx context.Context, s Store, key string) (T, bool, error) {
	var v T
	err := s.Get(ctx, key, &v)
	switch {
	case errors.Is(err, ErrMiss):
		return v, false, nil
	case err != nil:
		return v, false, err
	}
	return v, true, nil
}
