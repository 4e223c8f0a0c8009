package adapters

import (
	"context"
	"sort"
	"sync"

	"storefront-api/internal/features/addresses/domain"

	"github.com/google/uuid"
)

// MemoryAddressRepository is an in-process ports.AddressRepository.
type MemoryAddressRepository struct {
	mu    sync.RWMutex
	items map[string]domain.Address
}

// NewMemoryAddressRepository creates an empty repository.
func NewMemoryAddressRepository() *MemoryAddressRepository {
	return &MemoryAddressRepository{items: make(map[string]domain.Address)}
}

func (r *MemoryAddressRepository) Create(_ context.Context, a *domain.Address) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a.ID = uuid.NewString()
	r.items[a.ID] = *a
	return nil
}

func (r *MemoryAddressRepository) GetByID(_ context.Context, id string) (*domain.Address, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.items[id]
	if !ok {
		return nil, domain.ErrAddressNotFound
	}
	return &a, nil
}

func (r *MemoryAddressRepository) ListByCustomer(_ context.Context, customerID string) ([]*domain.Address, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*domain.Address
	for _, a := range r.items {
		if a.CustomerID == customerID {
			a := a
			out = append(out, &a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}
