package ports

import (
	"context"

	"storefront-api/internal/features/banners/domain"
)

// BannerService defines the primary port for banner operations.
type BannerService interface {
	List(ctx context.Context) ([]*domain.Banner, error)
	Create(ctx context.Context, b domain.Banner) (*domain.Banner, error)
	ToggleStatus(ctx context.Context, id string) (bool, error)
	Delete(ctx context.Context, id string) error
}

// BannerRepository defines the secondary port for banner storage.
type BannerRepository interface {
	Create(ctx context.Context, b *domain.Banner) error
	List(ctx context.Context) ([]*domain.Banner, error)
	Get(ctx context.Context, id string) (*domain.Banner, error)
	SetStatus(ctx context.Context, id string, status bool) error
	Delete(ctx context.Context, id string) error
}
