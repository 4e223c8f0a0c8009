package service

import (
	"context"
	"fmt"
	"time"

	"storefront-api/internal/core/events"
	"storefront-api/internal/core/logger"
	addressdomain "storefront-api/internal/features/addresses/domain"
	"storefront-api/internal/features/orders/domain"
	"storefront-api/internal/features/orders/ports"
	shippingdomain "storefront-api/internal/features/shipping/domain"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const maxShipmentBackoff = 24 * time.Hour

// attemptShipment books the order with the shipping provider once and records
// the attempt. A failure never changes the order status or its stock debit: the
// shipment stays PENDING with backoff until attempts run out, then FAILED.
func (s *Orchestrator) attemptShipment(ctx context.Context, order *domain.Order) *domain.Order {
	ctx, span := s.tracer.Start(ctx, spanPrefix+"AttemptShipment",
		trace.WithAttributes(attribute.String("order.merchant_id", order.MerchantOrderID)),
	)
	defer span.End()

	l := logger.FromContext(ctx).With(
		zap.String("order_id", order.ID),
		zap.String("merchant_order_id", order.MerchantOrderID),
	)

	attempts := 1
	if order.Shipment != nil {
		attempts = order.Shipment.Attempts + 1
	}

	reference, shipErr := s.bookShipment(ctx, order)
	span.SetAttributes(attribute.Int("shipment.attempt", attempts))
	if shipErr != nil {
		span.RecordError(shipErr)
		span.SetStatus(codes.Error, "shipment not booked")
	}

	next := domain.Shipment{Attempts: attempts}
	switch {
	case shipErr == nil:
		next.Status = domain.ShipmentCreated
		s.metrics.ShipmentAttempt("created")
		l.Info("Shipment created", zap.String("shipping_reference", reference))
	case attempts >= s.opts.ShipmentMaxAttempts:
		next.Status = domain.ShipmentFailed
		next.LastError = shipErr.Error()
		s.metrics.ShipmentAttempt("exhausted")
		l.Error("Shipment retries exhausted, manual fulfillment required",
			zap.Int("attempts", attempts),
			zap.Error(shipErr),
		)
	default:
		next.Status = domain.ShipmentPending
		next.LastError = shipErr.Error()
		next.NextAttemptAt = s.now().UTC().Add(s.backoff(attempts))
		s.metrics.ShipmentAttempt("failed")
		l.Warn("Shipment creation failed, will retry",
			zap.Int("attempts", attempts),
			zap.Time("next_attempt_at", next.NextAttemptAt),
			zap.Error(shipErr),
		)
	}

	if err := s.orders.UpdateShipment(ctx, order.ID, next, reference); err != nil {
		l.Error("Failed to record shipment attempt", zap.Error(err))
	}

	order.Shipment = &next
	if reference != "" {
		order.ShippingReference = reference
	}

	ev := newOrderEvent(order)
	if shipErr == nil {
		s.publish(ctx, events.ShipmentCreated, ev)
	} else {
		ev.Reason = shipErr.Error()
		s.publish(ctx, events.ShipmentPending, ev)
	}
	return order
}

func (s *Orchestrator) bookShipment(ctx context.Context, order *domain.Order) (string, error) {
	addr, err := s.addresses.GetByID(ctx, order.AddressID)
	if err != nil {
		return "", fmt.Errorf("load address: %w", err)
	}

	shipment, err := s.shipper.CreateShipment(ctx, consignmentFor(order, addr))
	if err != nil {
		return "", err
	}
	if shipment == nil || shipment.ProviderOrderNo == "" {
		return "", fmt.Errorf("%w: empty acknowledgement", shippingdomain.ErrShipping)
	}
	logger.FromContext(ctx).Debug("Shipment booked",
		zap.String("merchant_order_id", order.MerchantOrderID),
		zap.String("provider_order_no", shipment.ProviderOrderNo),
		zap.String("acknowledgement", shipment.Acknowledgement),
	)
	return shipment.ProviderOrderNo, nil
}

// backoff doubles the retry base per failed attempt.
func (s *Orchestrator) backoff(attempts int) time.Duration {
	d := s.opts.ShipmentRetryBase
	for i := 1; i < attempts && d < maxShipmentBackoff; i++ {
		d *= 2
	}
	return min(d, maxShipmentBackoff)
}

// RetryDueShipments re-attempts every shipment whose backoff has elapsed.
// It returns how many were attempted.
func (s *Orchestrator) RetryDueShipments(ctx context.Context, limit int) (int, error) {
	due, err := s.orders.ListDueShipments(ctx, s.now().UTC(), limit)
	if err != nil {
		return 0, fmt.Errorf("list due shipments: %w", err)
	}
	for _, order := range due {
		if ctx.Err() != nil {
			return 0, ctx.Err()
		}
		s.attemptShipment(ctx, order)
	}
	return len(due), nil
}

// ReconcileStalePending re-verifies online orders whose gateway callback never
// arrived. It returns how many were settled either way.
func (s *Orchestrator) ReconcileStalePending(ctx context.Context, olderThan time.Duration, limit int) (int, error) {
	stale, err := s.orders.ListStalePending(ctx, s.now().UTC().Add(-olderThan), limit)
	if err != nil {
		return 0, fmt.Errorf("list stale pending orders: %w", err)
	}

	settled := 0
	for _, order := range stale {
		if ctx.Err() != nil {
			return settled, ctx.Err()
		}
		res := s.VerifyOnlinePayment(ctx, order.MerchantOrderID)
		if res.Outcome != ports.VerifyPending && res.Order != nil && res.Order.Status != domain.StatusPaymentPending {
			settled++
		}
	}
	return settled, nil
}

func consignmentFor(order *domain.Order, addr *addressdomain.Address) shippingdomain.Consignment {
	items := make([]shippingdomain.Item, 0, len(order.Items))
	for _, it := range order.Items {
		items = append(items, shippingdomain.Item{
			Name:      it.ProductName,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
		})
	}
	return shippingdomain.Consignment{
		ClientOrderNo: order.ClientOrderNo(),
		Prepaid:       order.PaymentMode == domain.PaymentOnline,
		TotalAmount:   order.Amount,
		Recipient: shippingdomain.Recipient{
			FullName:     addr.FullName(),
			AddressLine1: addr.AddressLine1,
			AddressLine2: addr.AddressLine2,
			Landmark:     addr.Landmark,
			City:         addr.City,
			State:        addr.State,
			Pincode:      addr.Pincode,
			Phone:        addr.MobileNumber,
			Email:        addr.Email,
		},
		Items: items,
	}
}
