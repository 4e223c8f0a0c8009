package adapters

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"storefront-api/internal/core/cache"
	"storefront-api/internal/core/logger"
	"storefront-api/internal/features/banners/domain"
	"storefront-api/internal/features/banners/ports"

	"go.uber.org/zap"
)

const bannerListCacheKey = "banners:all"

// CachedBannerRepository keeps the banner list in the cache in front of another
// ports.BannerRepository. Every write drops the cached list.
type CachedBannerRepository struct {
	next  ports.BannerRepository
	cache cache.Cache
	ttl   time.Duration
}

// NewCachedBannerRepository wraps next. A zero ttl keeps the list until the next write.
func NewCachedBannerRepository(next ports.BannerRepository, c cache.Cache, ttl time.Duration) *CachedBannerRepository {
	return &CachedBannerRepository{
		next:  next,
		cache: c,
		ttl:   ttl,
	}
}

// List serves the list from the cache, falling back to the store on a miss.
func (r *CachedBannerRepository) List(ctx context.Context) ([]*domain.Banner, error) {
	data, err := r.cache.Get(ctx, bannerListCacheKey)
	switch {
	case err == nil:
		var banners []*domain.Banner
		if err := json.Unmarshal(data, &banners); err == nil {
			return banners, nil
		}
		logger.FromContext(ctx).Warn("Discarding unreadable banner cache entry")
	case !errors.Is(err, cache.ErrKeyNotFound):
		logger.FromContext(ctx).Warn("Banner cache unavailable", zap.Error(err))
	}

	banners, err := r.next.List(ctx)
	if err != nil {
		return nil, err
	}

	data, err = json.Marshal(banners)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal banners: %w", err)
	}
	if err := r.cache.Set(ctx, bannerListCacheKey, data, r.ttl); err != nil {
		logger.FromContext(ctx).Warn("Failed to cache banners", zap.Error(err))
	}
	return banners, nil
}

func (r *CachedBannerRepository) Get(ctx context.Context, id string) (*domain.Banner, error) {
	return r.next.Get(ctx, id)
}

func (r *CachedBannerRepository) Create(ctx context.Context, b *domain.Banner) error {
	if err := r.next.Create(ctx, b); err != nil {
		return err
	}
	r.invalidate(ctx)
	return nil
}

func (r *CachedBannerRepository) SetStatus(ctx context.Context, id string, status bool) error {
	if err := r.next.SetStatus(ctx, id, status); err != nil {
		return err
	}
	r.invalidate(ctx)
	return nil
}

func (r *CachedBannerRepository) Delete(ctx context.Context, id string) error {
	if err := r.next.Delete(ctx, id); err != nil {
		return err
	}
	r.invalidate(ctx)
	return nil
}

func (r *CachedBannerRepository) invalidate(ctx context.Context) {
	if err := r.cache.Delete(ctx, bannerListCacheKey); err != nil {
		logger.FromContext(ctx).Warn("Failed to invalidate banner cache", zap.Error(err))
	}
}
