package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storefront-api/internal/core/events"
	"storefront-api/internal/core/logger"
	addressdomain "storefront-api/internal/features/addresses/domain"
	"storefront-api/internal/features/orders/domain"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const defaultListLimit = 50

// GetOrder returns an order by id with its delivery address embedded.
func (s *Orchestrator) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.embedAddresses(ctx, []*domain.Order{order})
	return order, nil
}

// ListOrders returns orders newest first, each with its delivery address embedded.
func (s *Orchestrator) ListOrders(ctx context.Context, filter domain.ListFilter) ([]*domain.Order, error) {
	if filter.Limit <= 0 {
		filter.Limit = defaultListLimit
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	orders, err := s.orders.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	s.embedAddresses(ctx, orders)
	return orders, nil
}

// embedAddresses looks each distinct address up once. An address that can no
// longer be loaded leaves Address nil; the order is still returned.
func (s *Orchestrator) embedAddresses(ctx context.Context, orders []*domain.Order) {
	seen := make(map[string]*addressdomain.Address, len(orders))
	for _, o := range orders {
		if o.AddressID == "" {
			continue
		}
		addr, ok := seen[o.AddressID]
		if !ok {
			var err error
			addr, err = s.addresses.GetByID(ctx, o.AddressID)
			if err != nil {
				if !errors.Is(err, addressdomain.ErrAddressNotFound) {
					logger.FromContext(ctx).Warn("Failed to load order address",
						zap.String("order_id", o.ID),
						zap.String("address_id", o.AddressID),
						zap.Error(err),
					)
				}
				addr = nil
			}
			seen[o.AddressID] = addr
		}
		o.Address = addr
	}
}

// UpdateStatus applies an admin status change along the lifecycle. Cancelling
// returns any stock debited for the order.
func (s *Orchestrator) UpdateStatus(ctx context.Context, id string, to domain.OrderStatus) (_ *domain.Order, err error) {
	ctx, span := s.tracer.Start(ctx, spanPrefix+"UpdateStatus",
		trace.WithAttributes(attribute.String("order.id", id), attribute.String("order.status_to", string(to))),
	)
	started := time.Now()
	defer func() { s.finish(span, useCaseUpdateStatus, errorOutcome(err), started, err) }()

	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := order.CheckTransition(to); err != nil {
		return nil, err
	}

	updated, err := s.orders.TransitionStatus(ctx, id, order.Status, to, domain.StatusPatch{})
	if err != nil {
		if errors.Is(err, domain.ErrStaleState) {
			return nil, fmt.Errorf("%w: order changed while updating", domain.ErrStaleState)
		}
		return nil, fmt.Errorf("update order status: %w", err)
	}

	switch {
	case to == domain.StatusCancelled:
		s.releaseStock(ctx, updated)
	case updated.StockSettled() && !order.StockSettled():
		s.settleStock(ctx, updated)
	}

	logger.FromContext(ctx).Info("Order status updated",
		zap.String("order_id", id),
		zap.String("from", string(order.Status)),
		zap.String("to", string(to)),
	)
	ev := newOrderEvent(updated)
	ev.PreviousStatus = order.Status
	s.publish(ctx, events.OrderStatusChanged, ev)
	return updated, nil
}

// UpdateItemStatus sets the fulfillment status of one line.
func (s *Orchestrator) UpdateItemStatus(ctx context.Context, id string, index int, status domain.ItemStatus) (*domain.Order, error) {
	return s.orders.UpdateItemStatus(ctx, id, index, status)
}

// DeleteOrder removes an order. Admin only. A pending order gives back any
// partial debit; stock already held by a paid or confirmed order stays sold.
func (s *Orchestrator) DeleteOrder(ctx context.Context, id string) error {
	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.orders.Delete(ctx, id); err != nil {
		return err
	}
	switch {
	case order.Status == domain.StatusPaymentPending:
		s.releaseStock(ctx, order)
	case order.HoldsStock():
		s.settleStock(ctx, order)
	}
	logger.FromContext(ctx).Info("Order deleted", zap.String("order_id", id))
	return nil
}
