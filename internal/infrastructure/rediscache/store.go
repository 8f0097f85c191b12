package rediscache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ErlanBelekov/greeting-api/internal/cache"
	"github.com/redis/go-redis/v9"
)

// KEYS[1] is deleted only when its value equals ARGV[1].
var compareAndDelete = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Store implements cache.Store on Redis. Values are stored as JSON strings.
type Store struct {
	client *redis.Client
}

func NewStore(client *redis.Client) *Store {
	return &Store{client: client}
}

func (s *Store) Get(ctx context.Context, key string, dest any) error {
	b, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return cache.ErrMiss
	}
	if err != nil {
		return fmt.Errorf("redis get %q: %w", key, err)
	}
	if err := json.Unmarshal(b, dest); err != nil {
		return fmt.Errorf("decode cache value %q: %w", key, err)
	}
	return nil
}

func (s *Store) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	b, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode cache value %q: %w", key, err)
	}
	if ttl < 0 {
		ttl = 0
	}
	if err := s.client.Set(ctx, key, b, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %q: %w", key, err)
	}
	return nil
}

func (s *Store) Remove(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis del %q: %w", key, err)
	}
	return nil
}

func (s *Store) CompareAndDelete(ctx context.Context, key string, expected any) (bool, error) {
	b, err := json.Marshal(expected)
	if err != nil {
		return false, fmt.Errorf("encode cache value %q: %w", key, err)
	}
	n, err := compareAndDelete.Run(ctx, s.client, []string{key}, string(b)).Int()
	if err != nil {
		return false, fmt.Errorf("redis compare-and-delete %q: %w", key, err)
	}
	return n == 1, nil
}

// Ping satisfies health.Pinger.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
