package service

import (
	"context"
	"errors"
	"testing"

	"storefront-api/internal/features/inventory/domain"
	"storefront-api/internal/features/inventory/ports"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockProductRepository is a mock implementation of ports.ProductRepository.
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) Create(ctx context.Context, p *domain.Product) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockProductRepository) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *MockProductRepository) GetByName(ctx context.Context, name string) (*domain.Product, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *MockProductRepository) List(ctx context.Context) ([]*domain.Product, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Product), args.Error(1)
}

func (m *MockProductRepository) SetStock(ctx context.Context, id string, stock int) (*domain.Product, error) {
	args := m.Called(ctx, id, stock)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *MockProductRepository) DebitStock(ctx context.Context, name string, qty int, key string) error {
	return m.Called(ctx, name, qty, key).Error(0)
}

func (m *MockProductRepository) RestoreStock(ctx context.Context, name string, qty int, key string) error {
	return m.Called(ctx, name, qty, key).Error(0)
}

func (m *MockProductRepository) SettleDebit(ctx context.Context, name string, key string) error {
	return m.Called(ctx, name, key).Error(0)
}

func (m *MockProductRepository) Update(ctx context.Context, id string, patch domain.ProductPatch) (*domain.Product, error) {
	args := m.Called(ctx, id, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *MockProductRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func TestProductService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		repo := new(MockProductRepository)
		svc := NewProductService(repo)
		repo.On("Create", ctx, mock.AnythingOfType("*domain.Product")).Return(nil).Once()

		p, err := svc.Create(ctx, ports.CreateProductInput{
			Name:     "Sesame Oil 1L",
			Stock:    10,
			Variants: []domain.Variant{{Quantity: "1L", Price: decimal.NewFromInt(250)}},
		})
		require.NoError(t, err)
		assert.Equal(t, "Sesame Oil 1L", p.Name)
		repo.AssertExpectations(t)
	})

	t.Run("Invalid", func(t *testing.T) {
		repo := new(MockProductRepository)
		svc := NewProductService(repo)

		_, err := svc.Create(ctx, ports.CreateProductInput{Name: ""})
		assert.ErrorIs(t, err, domain.ErrInvalidProduct)
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("RepoError", func(t *testing.T) {
		repo := new(MockProductRepository)
		svc := NewProductService(repo)
		repo.On("Create", ctx, mock.Anything).Return(domain.ErrDuplicateProduct).Once()

		_, err := svc.Create(ctx, ports.CreateProductInput{Name: "Sesame Oil 1L"})
		assert.ErrorIs(t, err, domain.ErrDuplicateProduct)
	})
}

func TestProductService_Restock(t *testing.T) {
	ctx := context.Background()

	t.Run("Negative", func(t *testing.T) {
		svc := NewProductService(new(MockProductRepository))
		_, err := svc.Restock(ctx, "id", -1)
		assert.ErrorIs(t, err, domain.ErrInvalidProduct)
	})

	t.Run("Success", func(t *testing.T) {
		repo := new(MockProductRepository)
		svc := NewProductService(repo)
		repo.On("SetStock", ctx, "id", 12).Return(&domain.Product{ID: "id", Stock: 12}, nil).Once()

		p, err := svc.Restock(ctx, "id", 12)
		require.NoError(t, err)
		assert.Equal(t, 12, p.Stock)
	})
}

func TestProductService_List(t *testing.T) {
	ctx := context.Background()
	repo := new(MockProductRepository)
	svc := NewProductService(repo)
	repo.On("List", ctx).Return(nil, errors.New("db down")).Once()

	_, err := svc.List(ctx)
	assert.Error(t, err)
}

func TestProductService_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		repo := new(MockProductRepository)
		svc := NewProductService(repo)
		category := "cold pressed"
		patch := domain.ProductPatch{
			Category: &category,
			Variants: []domain.Variant{{Quantity: "500ml", Price: decimal.NewFromInt(140)}},
		}
		repo.On("Update", ctx, "p1", mock.MatchedBy(func(p domain.ProductPatch) bool {
			return *p.Category == category && p.Variants[0].Unit == "pcs"
		})).Return(&domain.Product{ID: "p1", Category: category}, nil).Once()

		p, err := svc.Update(ctx, "p1", patch)
		require.NoError(t, err)
		assert.Equal(t, category, p.Category)
		repo.AssertExpectations(t)
	})

	t.Run("EmptyVariants", func(t *testing.T) {
		repo := new(MockProductRepository)
		svc := NewProductService(repo)

		_, err := svc.Update(ctx, "p1", domain.ProductPatch{Variants: []domain.Variant{}})
		assert.ErrorIs(t, err, domain.ErrInvalidProduct)
		repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("NegativeStock", func(t *testing.T) {
		stock := -2
		_, err := NewProductService(new(MockProductRepository)).Update(ctx, "p1", domain.ProductPatch{Stock: &stock})
		assert.ErrorIs(t, err, domain.ErrInvalidProduct)
	})
}

func TestProductService_Delete(t *testing.T) {
	ctx := context.Background()
	repo := new(MockProductRepository)
	svc := NewProductService(repo)
	repo.On("Delete", ctx, "missing").Return(domain.ErrProductNotFound).Once()

	assert.ErrorIs(t, svc.Delete(ctx, "missing"), domain.ErrProductNotFound)
}
