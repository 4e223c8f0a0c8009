package ports

import (
	"context"

	"storefront-api/internal/features/inventory/domain"
)

// ProductRepository is the secondary port for product persistence.
type ProductRepository interface {
	Create(ctx context.Context, p *domain.Product) error
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	GetByName(ctx context.Context, name string) (*domain.Product, error)
	List(ctx context.Context) ([]*domain.Product, error)
	SetStock(ctx context.Context, id string, stock int) (*domain.Product, error)
	Update(ctx context.Context, id string, patch domain.ProductPatch) (*domain.Product, error)
	Delete(ctx context.Context, id string) error

	// DebitStock decrements stock and increments soldStock by qty in one conditional
	// update, guarded by stock >= qty and by key not yet applied to the product.
	// It returns ErrProductNotFound, ErrInsufficientStock or ErrDebitAlreadyApplied
	// when the guard rejects the update.
	DebitStock(ctx context.Context, name string, qty int, key string) error
	// RestoreStock reverses a debit previously applied under key. It is a no-op
	// if key was never applied.
	RestoreStock(ctx context.Context, name string, qty int, key string) error
	// SettleDebit forgets key without touching stock. After it, the debit can
	// neither be replayed as a no-op nor restored.
	SettleDebit(ctx context.Context, name string, key string) error
}

// ProductService is the primary port used by the HTTP handler.
type ProductService interface {
	Create(ctx context.Context, input CreateProductInput) (*domain.Product, error)
	Get(ctx context.Context, id string) (*domain.Product, error)
	GetByName(ctx context.Context, name string) (*domain.Product, error)
	List(ctx context.Context) ([]*domain.Product, error)
	Restock(ctx context.Context, id string, stock int) (*domain.Product, error)
	Update(ctx context.Context, id string, patch domain.ProductPatch) (*domain.Product, error)
	Delete(ctx context.Context, id string) error
}

// CreateProductInput carries the fields accepted when creating a product.
type CreateProductInput struct {
	Name        string
	Category    string
	Description string
	Images      []string
	Stock       int
	Variants    []domain.Variant
}
