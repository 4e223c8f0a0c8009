package adapters

import (
	"context"
	"slices"
	"sync"
	"time"

	"storefront-api/internal/features/orders/domain"

	"github.com/google/uuid"
)

// MemoryOrderRepository is the in-process order store used with STORAGE_DRIVER=memory
// and in service tests. A single mutex makes every conditional write atomic.
type MemoryOrderRepository struct {
	mu         sync.Mutex
	orders     map[string]*domain.Order
	byMerchant map[string]string
	seq        int64
	now        func() time.Time
}

// NewMemoryOrderRepository creates an empty store.
func NewMemoryOrderRepository() *MemoryOrderRepository {
	return &MemoryOrderRepository{
		orders:     make(map[string]*domain.Order),
		byMerchant: make(map[string]string),
		now:        time.Now,
	}
}

func (r *MemoryOrderRepository) NextOrderNumber(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	return r.seq, nil
}

func (r *MemoryOrderRepository) Create(_ context.Context, o *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byMerchant[o.MerchantOrderID]; exists {
		return domain.ErrDuplicateOrder
	}

	o.ID = uuid.NewString()
	if o.CreatedAt.IsZero() {
		o.CreatedAt = r.now().UTC()
	}
	o.UpdatedAt = o.CreatedAt

	r.orders[o.ID] = cloneOrder(o)
	r.byMerchant[o.MerchantOrderID] = o.ID
	return nil
}

func (r *MemoryOrderRepository) GetByID(_ context.Context, id string) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	o, ok := r.orders[id]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	return cloneOrder(o), nil
}

func (r *MemoryOrderRepository) GetByMerchantOrderID(_ context.Context, merchantOrderID string) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, ok := r.byMerchant[merchantOrderID]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	return cloneOrder(r.orders[id]), nil
}

func (r *MemoryOrderRepository) List(_ context.Context, filter domain.ListFilter) ([]*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*domain.Order, 0, len(r.orders))
	for _, o := range r.orders {
		if filter.Status != "" && o.Status != filter.Status {
			continue
		}
		if filter.PaymentMode != "" && o.PaymentMode != filter.PaymentMode {
			continue
		}
		out = append(out, cloneOrder(o))
	}
	slices.SortFunc(out, func(a, b *domain.Order) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})

	if filter.Offset >= len(out) {
		return []*domain.Order{}, nil
	}
	out = out[filter.Offset:]
	if filter.Limit > 0 && filter.Limit < len(out) {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (r *MemoryOrderRepository) DeletePending(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	o, ok := r.orders[id]
	if !ok {
		return domain.ErrOrderNotFound
	}
	if o.Status != domain.StatusPaymentPending {
		return domain.ErrStaleState
	}
	r.remove(o)
	return nil
}

func (r *MemoryOrderRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	o, ok := r.orders[id]
	if !ok {
		return domain.ErrOrderNotFound
	}
	r.remove(o)
	return nil
}

func (r *MemoryOrderRepository) ClaimVerification(_ context.Context, merchantOrderID string, now, leaseUntil time.Time) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, ok := r.byMerchant[merchantOrderID]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	o := r.orders[id]
	if o.Status != domain.StatusPaymentPending || o.VerifyLeaseUntil.After(now) {
		return nil, domain.ErrStaleState
	}
	o.VerifyLeaseUntil = leaseUntil
	o.UpdatedAt = r.now().UTC()
	return cloneOrder(o), nil
}

func (r *MemoryOrderRepository) ReleaseVerification(_ context.Context, merchantOrderID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if id, ok := r.byMerchant[merchantOrderID]; ok {
		r.orders[id].VerifyLeaseUntil = time.Time{}
	}
	return nil
}

func (r *MemoryOrderRepository) TransitionStatus(_ context.Context, id string, from, to domain.OrderStatus, patch domain.StatusPatch) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	o, ok := r.orders[id]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	if o.Status != from {
		return nil, domain.ErrStaleState
	}

	o.Status = to
	o.VerifyLeaseUntil = time.Time{}
	if patch.PaymentTransactionID != "" {
		o.PaymentTransactionID = patch.PaymentTransactionID
	}
	if patch.FailureReason != "" {
		o.FailureReason = patch.FailureReason
	}
	if patch.Shipment != nil {
		s := *patch.Shipment
		o.Shipment = &s
	}
	o.UpdatedAt = r.now().UTC()
	return cloneOrder(o), nil
}

func (r *MemoryOrderRepository) UpdateShipment(_ context.Context, id string, shipment domain.Shipment, reference string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	o, ok := r.orders[id]
	if !ok {
		return domain.ErrOrderNotFound
	}
	o.Shipment = &shipment
	if reference != "" {
		o.ShippingReference = reference
	}
	o.UpdatedAt = r.now().UTC()
	return nil
}

func (r *MemoryOrderRepository) UpdateItemStatus(_ context.Context, id string, index int, status domain.ItemStatus) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	o, ok := r.orders[id]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	if index < 0 || index >= len(o.Items) {
		return nil, domain.ErrItemNotFound
	}
	o.Items[index].ItemStatus = status
	o.UpdatedAt = r.now().UTC()
	return cloneOrder(o), nil
}

func (r *MemoryOrderRepository) ListDueShipments(_ context.Context, now time.Time, limit int) ([]*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*domain.Order
	for _, o := range r.orders {
		if o.Shipment == nil || o.Shipment.Status != domain.ShipmentPending || o.Shipment.NextAttemptAt.After(now) {
			continue
		}
		if o.Status != domain.StatusPaid && o.Status != domain.StatusConfirmed {
			continue
		}
		out = append(out, cloneOrder(o))
	}
	slices.SortFunc(out, func(a, b *domain.Order) int {
		return a.Shipment.NextAttemptAt.Compare(b.Shipment.NextAttemptAt)
	})
	return truncate(out, limit), nil
}

func (r *MemoryOrderRepository) ListStalePending(_ context.Context, cutoff time.Time, limit int) ([]*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*domain.Order
	for _, o := range r.orders {
		if o.Status == domain.StatusPaymentPending && o.PaymentMode == domain.PaymentOnline && o.CreatedAt.Before(cutoff) {
			out = append(out, cloneOrder(o))
		}
	}
	slices.SortFunc(out, func(a, b *domain.Order) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	return truncate(out, limit), nil
}

func (r *MemoryOrderRepository) remove(o *domain.Order) {
	delete(r.byMerchant, o.MerchantOrderID)
	delete(r.orders, o.ID)
}

func truncate(orders []*domain.Order, limit int) []*domain.Order {
	if limit > 0 && len(orders) > limit {
		return orders[:limit]
	}
	return orders
}

func cloneOrder(o *domain.Order) *domain.Order {
	c := *o
	c.Address = nil
	c.Items = slices.Clone(o.Items)
	if o.Shipment != nil {
		s := *o.Shipment
		c.Shipment = &s
	}
	return &c
}
