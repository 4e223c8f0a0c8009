package ports

import (
	"context"

	"storefront-api/internal/features/contacts/domain"
)

// ContactRepository is the secondary port for contact persistence.
type ContactRepository interface {
	Create(ctx context.Context, c *domain.Contact) error
	List(ctx context.Context) ([]*domain.Contact, error)
	Delete(ctx context.Context, id string) error
}

// ContactService is the primary port for contact operations.
type ContactService interface {
	Submit(ctx context.Context, c domain.Contact) (*domain.Contact, error)
	List(ctx context.Context) ([]*domain.Contact, error)
	Delete(ctx context.Context, id string) error
}
