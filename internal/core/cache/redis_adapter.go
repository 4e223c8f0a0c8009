package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisAdapter implements Cache on Redis. Every key is stored under prefix so the
// storefront can share a Redis instance with other services.
type RedisAdapter struct {
	client *redis.Client
	prefix string
}

// RedisOption customizes a RedisAdapter.
type RedisOption func(*RedisAdapter)

// WithKeyPrefix namespaces every key, e.g. "storefront:" turns "banners:all"
// into "storefront:banners:all".
func WithKeyPrefix(prefix string) RedisOption {
	return func(r *RedisAdapter) { r.prefix = prefix }
}

// NewRedisAdapter creates a new Redis cache adapter. The connection is lazy; call Ping to verify it.
// The redisURL should be in the format: redis://[:password@]host[:port][/database]
func NewRedisAdapter(redisURL string, opts ...RedisOption) (*RedisAdapter, error) {
	parsed, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	r := &RedisAdapter{client: redis.NewClient(parsed)}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

func (r *RedisAdapter) key(k string) string { return r.prefix + k }

// Get retrieves a value by key.
func (r *RedisAdapter) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := r.client.Get(ctx, r.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: %s", ErrKeyNotFound, key)
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}
	return val, nil
}

// Set stores value with ttl. A non-positive ttl keeps the key until deleted.
func (r *RedisAdapter) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}
	if err := r.client.Set(ctx, r.key(key), value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (r *RedisAdapter) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.key(key)).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	return nil
}

func (r *RedisAdapter) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func (r *RedisAdapter) Close() error {
	return r.client.Close()
}
