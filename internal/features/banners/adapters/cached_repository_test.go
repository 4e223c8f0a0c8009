package adapters

import (
	"context"
	"testing"
	"time"

	"storefront-api/internal/core/cache"
	"storefront-api/internal/features/banners/domain"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingRepository counts List calls that reach the store.
type countingRepository struct {
	*MemoryBannerRepository
	lists int
}

func (r *countingRepository) List(ctx context.Context) ([]*domain.Banner, error) {
	r.lists++
	return r.MemoryBannerRepository.List(ctx)
}

func setupCached(t *testing.T) (*CachedBannerRepository, *countingRepository, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c, err := cache.NewRedisAdapter("redis://" + mr.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })

	store := &countingRepository{MemoryBannerRepository: NewMemoryBannerRepository()}
	return NewCachedBannerRepository(store, c, time.Hour), store, mr
}

func TestCachedBannerRepository_ListIsCached(t *testing.T) {
	repo, store, mr := setupCached(t)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &domain.Banner{Title: "Oils", Image: "/o.jpg", Status: true}))

	first, err := repo.List(ctx)
	require.NoError(t, err)
	second, err := repo.List(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, store.lists)
	require.Len(t, second, len(first))
	assert.Equal(t, first[0].ID, second[0].ID)
	assert.Equal(t, "Oils", second[0].Title)
	assert.True(t, mr.Exists(bannerListCacheKey))
}

func TestCachedBannerRepository_WritesInvalidate(t *testing.T) {
	repo, store, mr := setupCached(t)
	ctx := context.Background()

	b := &domain.Banner{Title: "Oils", Image: "/o.jpg", Status: true}
	require.NoError(t, repo.Create(ctx, b))
	_, err := repo.List(ctx)
	require.NoError(t, err)

	require.NoError(t, repo.SetStatus(ctx, b.ID, false))
	assert.False(t, mr.Exists(bannerListCacheKey))

	banners, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, banners, 1)
	assert.False(t, banners[0].Status)

	require.NoError(t, repo.Delete(ctx, b.ID))
	banners, err = repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, banners)
	assert.Equal(t, 3, store.lists)
}

func TestCachedBannerRepository_FailedWriteKeepsCache(t *testing.T) {
	repo, _, mr := setupCached(t)
	ctx := context.Background()

	_, err := repo.List(ctx)
	require.NoError(t, err)

	assert.ErrorIs(t, repo.Delete(ctx, "missing"), domain.ErrBannerNotFound)
	assert.True(t, mr.Exists(bannerListCacheKey))
}

func TestCachedBannerRepository_CorruptEntryFallsBack(t *testing.T) {
	repo, store, mr := setupCached(t)
	ctx := context.Background()
	require.NoError(t, mr.Set(bannerListCacheKey, "not-json"))

	banners, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, banners)
	assert.Equal(t, 1, store.lists)
}

func TestCachedBannerRepository_CacheDown(t *testing.T) {
	repo, store, mr := setupCached(t)
	ctx := context.Background()
	mr.Close()

	require.NoError(t, repo.Create(ctx, &domain.Banner{Title: "Oils", Image: "/o.jpg"}))

	banners, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, banners, 1)
	assert.Equal(t, 1, store.lists)
}
