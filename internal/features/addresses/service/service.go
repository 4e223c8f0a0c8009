package service

import (
	"context"
	"fmt"
	"time"

	"storefront-api/internal/features/addresses/domain"
	"storefront-api/internal/features/addresses/ports"
)

// AddressServiceImpl implements ports.AddressService.
type AddressServiceImpl struct {
	repo ports.AddressRepository
}

// NewAddressService creates a new AddressServiceImpl.
func NewAddressService(repo ports.AddressRepository) *AddressServiceImpl {
	return &AddressServiceImpl{repo: repo}
}

// Create validates and stores a.
func (s *AddressServiceImpl) Create(ctx context.Context, a *domain.Address) (*domain.Address, error) {
	if err := a.Validate(); err != nil {
		return nil, err
	}
	a.ID = ""
	a.CreatedAt = time.Now().UTC()

	if err := s.repo.Create(ctx, a); err != nil {
		return nil, fmt.Errorf("service: failed to create address: %w", err)
	}
	return a, nil
}

// Get returns the address with id or ErrAddressNotFound.
func (s *AddressServiceImpl) Get(ctx context.Context, id string) (*domain.Address, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *AddressServiceImpl) ListByCustomer(ctx context.Context, customerID string) ([]*domain.Address, error) {
	if customerID == "" {
		return nil, fmt.Errorf("%w: customerId is required", domain.ErrInvalidAddress)
	}
	return s.repo.ListByCustomer(ctx, customerID)
}
