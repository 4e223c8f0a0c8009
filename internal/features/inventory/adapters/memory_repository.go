package adapters

import (
	"context"
	"sort"
	"sync"
	"time"

	"storefront-api/internal/features/inventory/domain"

	"github.com/google/uuid"
)

type memoryProduct struct {
	product domain.Product
	applied map[string]struct{}
}

// MemoryProductRepository is a mutex-guarded ports.ProductRepository.
type MemoryProductRepository struct {
	mu     sync.Mutex
	byID   map[string]*memoryProduct
	byName map[string]string
}

// NewMemoryProductRepository creates an empty repository.
func NewMemoryProductRepository() *MemoryProductRepository {
	return &MemoryProductRepository{
		byID:   make(map[string]*memoryProduct),
		byName: make(map[string]string),
	}
}

func (r *MemoryProductRepository) Create(_ context.Context, p *domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byName[p.Name]; ok {
		return domain.ErrDuplicateProduct
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	r.byID[p.ID] = &memoryProduct{product: clone(p), applied: make(map[string]struct{})}
	r.byName[p.Name] = p.ID
	return nil
}

func (r *MemoryProductRepository) GetByID(_ context.Context, id string) (*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	mp, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	p := clone(&mp.product)
	return &p, nil
}

func (r *MemoryProductRepository) GetByName(_ context.Context, name string) (*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	mp, ok := r.lookup(name)
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	p := clone(&mp.product)
	return &p, nil
}

func (r *MemoryProductRepository) List(_ context.Context) ([]*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*domain.Product, 0, len(r.byID))
	for _, mp := range r.byID {
		p := clone(&mp.product)
		out = append(out, &p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *MemoryProductRepository) SetStock(_ context.Context, id string, stock int) (*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	mp, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	mp.product.Stock = stock
	mp.product.UpdatedAt = time.Now().UTC()
	p := clone(&mp.product)
	return &p, nil
}

func (r *MemoryProductRepository) Update(_ context.Context, id string, patch domain.ProductPatch) (*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	mp, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	mp.product.Apply(patch, time.Now().UTC())
	p := clone(&mp.product)
	return &p, nil
}

func (r *MemoryProductRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	mp, ok := r.byID[id]
	if !ok {
		return domain.ErrProductNotFound
	}
	delete(r.byName, mp.product.Name)
	delete(r.byID, id)
	return nil
}

func (r *MemoryProductRepository) DebitStock(_ context.Context, name string, qty int, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	mp, ok := r.lookup(name)
	if !ok {
		return domain.ErrProductNotFound
	}
	if _, done := mp.applied[key]; done {
		return domain.ErrDebitAlreadyApplied
	}
	if mp.product.Stock < qty {
		return domain.ErrInsufficientStock
	}
	mp.product.Stock -= qty
	mp.product.SoldStock += qty
	mp.product.UpdatedAt = time.Now().UTC()
	mp.applied[key] = struct{}{}
	return nil
}

func (r *MemoryProductRepository) RestoreStock(_ context.Context, name string, qty int, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	mp, ok := r.lookup(name)
	if !ok {
		return nil
	}
	if _, done := mp.applied[key]; !done {
		return nil
	}
	mp.product.Stock += qty
	mp.product.SoldStock -= qty
	mp.product.UpdatedAt = time.Now().UTC()
	delete(mp.applied, key)
	return nil
}

func (r *MemoryProductRepository) SettleDebit(_ context.Context, name string, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if mp, ok := r.lookup(name); ok {
		delete(mp.applied, key)
	}
	return nil
}

func (r *MemoryProductRepository) lookup(name string) (*memoryProduct, bool) {
	id, ok := r.byName[name]
	if !ok {
		return nil, false
	}
	mp, ok := r.byID[id]
	return mp, ok
}

func clone(p *domain.Product) domain.Product {
	c := *p
	c.Images = append([]string(nil), p.Images...)
	c.Variants = append([]domain.Variant(nil), p.Variants...)
	return c
}
