package service

import (
	"context"
	"fmt"
	"time"

	"storefront-api/internal/features/banners/domain"
	"storefront-api/internal/features/banners/ports"
)

// BannerServiceImpl implements ports.BannerService.
type BannerServiceImpl struct {
	repo ports.BannerRepository
	now  func() time.Time
}

// NewBannerService creates a new BannerServiceImpl.
func NewBannerService(repo ports.BannerRepository) *BannerServiceImpl {
	return &BannerServiceImpl{
		repo: repo,
		now:  func() time.Time { return time.Now().UTC() },
	}
}

// List returns every banner, newest first.
func (s *BannerServiceImpl) List(ctx context.Context) ([]*domain.Banner, error) {
	banners, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service: failed to list banners: %w", err)
	}
	return banners, nil
}

// Create validates and saves a new banner.
func (s *BannerServiceImpl) Create(ctx context.Context, in domain.Banner) (*domain.Banner, error) {
	banner, err := domain.NewBanner(in, s.now())
	if err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, banner); err != nil {
		return nil, fmt.Errorf("service: failed to save banner: %w", err)
	}
	return banner, nil
}

// ToggleStatus flips the banner's visibility and returns the new value.
func (s *BannerServiceImpl) ToggleStatus(ctx context.Context, id string) (bool, error) {
	banner, err := s.repo.Get(ctx, id)
	if err != nil {
		return false, err
	}

	status := !banner.Status
	if err := s.repo.SetStatus(ctx, id, status); err != nil {
		return false, err
	}
	return status, nil
}

// Delete removes the banner.
func (s *BannerServiceImpl) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}
