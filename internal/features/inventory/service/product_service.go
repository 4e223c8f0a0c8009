package service

import (
	"context"
	"fmt"

	"storefront-api/internal/features/inventory/domain"
	"storefront-api/internal/features/inventory/ports"
)

// ProductServiceImpl implements ports.ProductService.
type ProductServiceImpl struct {
	repo ports.ProductRepository
}

// NewProductService creates a new ProductServiceImpl.
func NewProductService(repo ports.ProductRepository) *ProductServiceImpl {
	return &ProductServiceImpl{repo: repo}
}

// Create validates and stores a new product.
func (s *ProductServiceImpl) Create(ctx context.Context, in ports.CreateProductInput) (*domain.Product, error) {
	p, err := domain.NewProduct(in.Name, in.Category, in.Description, in.Images, in.Stock, in.Variants)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("service: failed to create product: %w", err)
	}
	return p, nil
}

func (s *ProductServiceImpl) Get(ctx context.Context, id string) (*domain.Product, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *ProductServiceImpl) GetByName(ctx context.Context, name string) (*domain.Product, error) {
	return s.repo.GetByName(ctx, name)
}

func (s *ProductServiceImpl) List(ctx context.Context) ([]*domain.Product, error) {
	products, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service: failed to list products: %w", err)
	}
	return products, nil
}

// Restock sets the available stock. Sold stock is left untouched.
func (s *ProductServiceImpl) Restock(ctx context.Context, id string, stock int) (*domain.Product, error) {
	if stock < 0 {
		return nil, fmt.Errorf("%w: stock must not be negative", domain.ErrInvalidProduct)
	}
	return s.repo.SetStock(ctx, id, stock)
}

// Update applies a partial catalog change.
func (s *ProductServiceImpl) Update(ctx context.Context, id string, patch domain.ProductPatch) (*domain.Product, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	return s.repo.Update(ctx, id, patch)
}

func (s *ProductServiceImpl) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}
