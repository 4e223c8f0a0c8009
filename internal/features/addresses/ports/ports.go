package ports

import (
	"context"

	"storefront-api/internal/features/addresses/domain"
)

// AddressRepository is the secondary port for address persistence.
type AddressRepository interface {
	Create(ctx context.Context, a *domain.Address) error
	GetByID(ctx context.Context, id string) (*domain.Address, error)
	ListByCustomer(ctx context.Context, customerID string) ([]*domain.Address, error)
}

// AddressService is the primary port for address operations.
type AddressService interface {
	Create(ctx context.Context, a *domain.Address) (*domain.Address, error)
	Get(ctx context.Context, id string) (*domain.Address, error)
	ListByCustomer(ctx context.Context, customerID string) ([]*domain.Address, error)
}
