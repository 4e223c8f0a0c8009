package adapters

import (
	"context"
	"sort"
	"sync"

	"storefront-api/internal/features/contacts/domain"

	"github.com/google/uuid"
)

// MemoryContactRepository is an in-process ports.ContactRepository.
type MemoryContactRepository struct {
	mu    sync.RWMutex
	items map[string]domain.Contact
}

func NewMemoryContactRepository() *MemoryContactRepository {
	return &MemoryContactRepository{items: make(map[string]domain.Contact)}
}

func (r *MemoryContactRepository) Create(_ context.Context, c *domain.Contact) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c.ID = uuid.NewString()
	r.items[c.ID] = *c
	return nil
}

func (r *MemoryContactRepository) List(_ context.Context) ([]*domain.Contact, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domain.Contact, 0, len(r.items))
	for _, c := range r.items {
		c := c
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *MemoryContactRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return domain.ErrContactNotFound
	}
	delete(r.items, id)
	return nil
}
