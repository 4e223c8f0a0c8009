package adapters

import (
	"context"
	"sort"
	"sync"
	"time"

	"storefront-api/internal/features/banners/domain"

	"github.com/google/uuid"
)

// MemoryBannerRepository is an in-process ports.BannerRepository.
type MemoryBannerRepository struct {
	mu    sync.RWMutex
	items map[string]domain.Banner
}

func NewMemoryBannerRepository() *MemoryBannerRepository {
	return &MemoryBannerRepository{items: make(map[string]domain.Banner)}
}

func (r *MemoryBannerRepository) Create(_ context.Context, b *domain.Banner) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b.ID = uuid.NewString()
	r.items[b.ID] = *b
	return nil
}

func (r *MemoryBannerRepository) List(_ context.Context) ([]*domain.Banner, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domain.Banner, 0, len(r.items))
	for _, b := range r.items {
		b := b
		out = append(out, &b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *MemoryBannerRepository) Get(_ context.Context, id string) (*domain.Banner, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.items[id]
	if !ok {
		return nil, domain.ErrBannerNotFound
	}
	return &b, nil
}

func (r *MemoryBannerRepository) SetStatus(_ context.Context, id string, status bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.items[id]
	if !ok {
		return domain.ErrBannerNotFound
	}
	b.Status = status
	b.UpdatedAt = time.Now().UTC()
	r.items[id] = b
	return nil
}

func (r *MemoryBannerRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return domain.ErrBannerNotFound
	}
	delete(r.items, id)
	return nil
}
