package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrNotFound is returned by Increment when the key does not exist. Callers
// must create the key with SetWithTTL on the first failure so the window is
// anchored to it; Increment never resurrects an expired counter.
var ErrNotFound = errors.New("counter not found")

// CounterStore is a key-expiring counter. Increments are atomic at the store
// level so concurrent writers never under-count.
type CounterStore interface {
	// Get returns the current count, or 0 if the key is absent or expired.
	Get(ctx context.Context, key string) (int, error)
	// SetWithTTL creates the key with an expiry, overwriting any prior value.
	SetWithTTL(ctx context.Context, key string, value int, ttl time.Duration) error
	// Increment atomically adds 1 and returns the new count. The key's TTL
	// is left untouched. Returns ErrNotFound if the key does not exist.
	Increment(ctx context.Context, key string) (int, error)
	// Delete removes the key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
}

// incrExisting increments only when the key exists, in one server-side step.
// Plain INCR would create the key without a TTL and the counter would never
// expire.
var incrExisting = redis.NewScript(`
if redis.call("EXISTS", KEYS[1]) == 0 then
	return -1
end
return redis.call("INCR", KEYS[1])
`)

// RedisCounterStore implements CounterStore on a Redis client.
type RedisCounterStore struct {
	client *redis.Client
}

func NewRedisCounterStore(client *redis.Client) *RedisCounterStore {
	return &RedisCounterStore{client: client}
}

func (s *RedisCounterStore) Get(ctx context.Context, key string) (int, error) {
	val, err := s.client.Get(ctx, key).Int()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("redis get %s: %w", key, err)
	}
	return val, nil
}

func (s *RedisCounterStore) SetWithTTL(ctx context.Context, key string, value int, ttl time.Duration) error {
	if err := s.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (s *RedisCounterStore) Increment(ctx context.Context, key string) (int, error) {
	val, err := incrExisting.Run(ctx, s.client, []string{key}).Int()
	if err != nil {
		return 0, fmt.Errorf("redis incr %s: %w", key, err)
	}
	if val == -1 {
		return 0, ErrNotFound
	}
	return val, nil
}

func (s *RedisCounterStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	return nil
}
