package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T, opts ...RedisOption) (*RedisAdapter, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	adapter, err := NewRedisAdapter("redis://"+mr.Addr(), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { adapter.Close() })
	return adapter, mr
}

// TestCacheContract runs the same expectations against every Cache implementation.
func TestCacheContract(t *testing.T) {
	impls := map[string]func(t *testing.T) Cache{
		"memory": func(*testing.T) Cache { return NewMemoryAdapter() },
		"redis": func(t *testing.T) Cache {
			a, _ := newTestRedis(t)
			return a
		},
	}

	for name, newCache := range impls {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			c := newCache(t)

			_, err := c.Get(ctx, "phonepe:access_token")
			assert.ErrorIs(t, err, ErrKeyNotFound)

			require.NoError(t, c.Set(ctx, "phonepe:access_token", []byte(`{"accessToken":"tok"}`), time.Minute))
			got, err := c.Get(ctx, "phonepe:access_token")
			require.NoError(t, err)
			assert.Equal(t, []byte(`{"accessToken":"tok"}`), got)

			require.NoError(t, c.Delete(ctx, "phonepe:access_token"))
			_, err = c.Get(ctx, "phonepe:access_token")
			assert.ErrorIs(t, err, ErrKeyNotFound)

			assert.NoError(t, c.Delete(ctx, "never-set"))
			assert.NoError(t, c.Ping(ctx))
		})
	}
}

func TestRedisAdapter_KeyPrefix(t *testing.T) {
	adapter, mr := newTestRedis(t, WithKeyPrefix("storefront:"))
	ctx := context.Background()

	require.NoError(t, adapter.Set(ctx, "banners:all", []byte("[]"), 0))

	assert.True(t, mr.Exists("storefront:banners:all"))
	assert.False(t, mr.Exists("banners:all"))

	got, err := adapter.Get(ctx, "banners:all")
	require.NoError(t, err)
	assert.Equal(t, []byte("[]"), got)

	require.NoError(t, adapter.Delete(ctx, "banners:all"))
	assert.False(t, mr.Exists("storefront:banners:all"))
}

func TestRedisAdapter_TTL(t *testing.T) {
	adapter, mr := newTestRedis(t)
	ctx := context.Background()

	require.NoError(t, adapter.Set(ctx, "phonepe:access_token", []byte("tok"), time.Second))
	assert.Equal(t, time.Second, mr.TTL("phonepe:access_token"))

	mr.FastForward(2 * time.Second)

	_, err := adapter.Get(ctx, "phonepe:access_token")
	assert.ErrorIs(t, err, ErrKeyNotFound)
}

func TestRedisAdapter_NegativeTTLPersists(t *testing.T) {
	adapter, mr := newTestRedis(t)

	require.NoError(t, adapter.Set(context.Background(), "k", []byte("v"), -time.Second))
	assert.True(t, mr.Exists("k"))
	assert.Zero(t, mr.TTL("k"))
}

func TestRedisAdapter_Unreachable(t *testing.T) {
	adapter, mr := newTestRedis(t)
	mr.Close()

	assert.Error(t, adapter.Ping(context.Background()))
	_, err := adapter.Get(context.Background(), "k")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrKeyNotFound)
}

func TestRedisAdapter_InvalidURL(t *testing.T) {
	_, err := NewRedisAdapter("invalid://url")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse Redis URL")
}
