package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"storefront-api/internal/core/events"
	"storefront-api/internal/core/logger"
	"storefront-api/internal/core/metrics"
	addressdomain "storefront-api/internal/features/addresses/domain"
	inventorydomain "storefront-api/internal/features/inventory/domain"
	"storefront-api/internal/features/orders/domain"
	"storefront-api/internal/features/orders/ports"
	paymentdomain "storefront-api/internal/features/payments/domain"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	useCaseInitiate     = "initiate_online_order"
	useCaseVerify       = "verify_online_payment"
	useCaseCreateCOD    = "create_cod_order"
	useCaseUpdateStatus = "update_order_status"

	spanPrefix = "orders."
	tracerName = "storefront-api/orders"
)

// Options tunes the orchestrator.
type Options struct {
	// PublicBaseURL is where the gateway sends the shopper back to.
	PublicBaseURL       string
	InitiateTimeout     time.Duration
	VerifyLeaseTTL      time.Duration
	ShipmentRetryBase   time.Duration
	ShipmentMaxAttempts int
}

// Dependencies are the collaborators of the orchestrator. Events, Metrics and
// Tracing may be nil; Tracing then falls back to the global provider.
type Dependencies struct {
	Orders    ports.OrderRepository
	Ledger    ports.StockLedger
	Gateway   ports.PaymentGateway
	Shipper   ports.ShippingProvider
	Addresses ports.AddressLookup
	Events    ports.EventPublisher
	Metrics   *metrics.Metrics
	Tracing   trace.TracerProvider
}

// Orchestrator drives an order from checkout through payment to shipment.
// It holds no in-process locks: per-order exclusivity comes from conditional
// writes in the order store and per-product exclusivity from the ledger.
type Orchestrator struct {
	orders    ports.OrderRepository
	ledger    ports.StockLedger
	gateway   ports.PaymentGateway
	shipper   ports.ShippingProvider
	addresses ports.AddressLookup
	events    ports.EventPublisher
	metrics   *metrics.Metrics
	tracer    trace.Tracer
	opts      Options

	now                func() time.Time
	newMerchantOrderID func() string
}

// NewOrchestrator creates a new Orchestrator.
func NewOrchestrator(deps Dependencies, opts Options) *Orchestrator {
	if deps.Events == nil {
		deps.Events = events.NopPublisher{}
	}
	if deps.Tracing == nil {
		deps.Tracing = otel.GetTracerProvider()
	}
	if opts.ShipmentMaxAttempts < 1 {
		opts.ShipmentMaxAttempts = 1
	}
	o := &Orchestrator{
		orders:    deps.Orders,
		ledger:    deps.Ledger,
		gateway:   deps.Gateway,
		shipper:   deps.Shipper,
		addresses: deps.Addresses,
		events:    deps.Events,
		metrics:   deps.Metrics,
		tracer:    deps.Tracing.Tracer(tracerName),
		opts:      opts,
		now:       time.Now,
	}
	o.newMerchantOrderID = o.generateMerchantOrderID
	return o
}

// InitiateOnlineOrder persists a PAYMENT_PENDING order and opens a gateway
// checkout for it. Stock is not touched. If the gateway call fails or times out
// the pending order is removed again.
func (s *Orchestrator) InitiateOnlineOrder(ctx context.Context, input ports.PlaceOrderInput) (_ *ports.InitiateResult, err error) {
	ctx, span := s.tracer.Start(ctx, spanPrefix+"InitiateOnlineOrder")
	started := time.Now()
	defer func() { s.finish(span, useCaseInitiate, errorOutcome(err), started, err) }()

	l := logger.FromContext(ctx)

	items, err := s.prepare(ctx, input)
	if err != nil {
		return nil, err
	}

	order, err := s.newOrder(ctx, input, items, domain.PaymentOnline, domain.StatusPaymentPending)
	if err != nil {
		return nil, err
	}
	if err := s.orders.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("create pending order: %w", err)
	}
	span.SetAttributes(attribute.String("order.merchant_id", order.MerchantOrderID))

	initCtx, cancel := s.withInitiateTimeout(ctx)
	checkout, err := s.gateway.Initiate(initCtx, order.MerchantOrderID, order.Amount, s.callbackURL(order.MerchantOrderID))
	cancel()
	if err != nil {
		s.discardPending(ctx, order)
		l.Error("Payment initiation failed",
			zap.String("merchant_order_id", order.MerchantOrderID),
			zap.Error(err),
		)
		return nil, fmt.Errorf("initiate payment: %w", asGatewayError(err))
	}

	l.Info("Payment initiated",
		zap.String("order_id", order.ID),
		zap.String("merchant_order_id", order.MerchantOrderID),
		zap.String("provider_order_id", checkout.ProviderOrderID),
	)
	s.publish(ctx, events.OrderCreated, newOrderEvent(order))

	return &ports.InitiateResult{
		RedirectURL:     checkout.RedirectURL,
		MerchantOrderID: order.MerchantOrderID,
	}, nil
}

// VerifyOnlinePayment handles the gateway callback. It is safe under
// at-least-once delivery: the first caller to lease the pending order does the
// work and every later caller replays the stored outcome.
func (s *Orchestrator) VerifyOnlinePayment(ctx context.Context, merchantOrderID string) *ports.VerifyResult {
	ctx, span := s.tracer.Start(ctx, spanPrefix+"VerifyOnlinePayment",
		trace.WithAttributes(attribute.String("order.merchant_id", merchantOrderID)),
	)
	started := time.Now()

	res := s.verify(ctx, merchantOrderID)

	span.SetAttributes(attribute.String("verify.outcome", string(res.Outcome)))
	var err error
	if res.Outcome == ports.VerifyFailure {
		err = errors.New(res.Reason)
	}
	s.finish(span, useCaseVerify, verifyOutcome(res.Outcome), started, err)
	return res
}

func (s *Orchestrator) verify(ctx context.Context, merchantOrderID string) *ports.VerifyResult {
	l := logger.FromContext(ctx).With(zap.String("merchant_order_id", merchantOrderID))

	if merchantOrderID == "" {
		return failure(nil, "missing merchant order id")
	}

	order, err := s.orders.GetByMerchantOrderID(ctx, merchantOrderID)
	if err != nil {
		if !errors.Is(err, domain.ErrOrderNotFound) {
			l.Error("Failed to load order for verification", zap.Error(err))
		}
		return failure(nil, "order not found")
	}
	if order.Status != domain.StatusPaymentPending {
		return replay(order)
	}

	now := s.now()
	order, err = s.orders.ClaimVerification(ctx, merchantOrderID, now, now.Add(s.opts.VerifyLeaseTTL))
	if err != nil {
		if errors.Is(err, domain.ErrStaleState) {
			return s.replayCurrent(ctx, merchantOrderID)
		}
		l.Error("Failed to lease order for verification", zap.Error(err))
		return failure(nil, "order unavailable")
	}

	status, err := s.gateway.CheckStatus(ctx, merchantOrderID)
	if err != nil {
		l.Error("Payment status check failed", zap.Error(err))
		s.releaseLease(ctx, merchantOrderID)
		return failure(order, "payment status unavailable")
	}

	if status.State != paymentdomain.StateCompleted {
		l.Info("Payment not completed", zap.String("state", string(status.State)))
		return s.markPaymentFailed(ctx, order, "payment "+strings.ToLower(string(status.State)), status.TransactionID)
	}
	return s.capture(ctx, order, status.TransactionID)
}

// capture debits stock and then moves the order to PAID. The debit is keyed by
// the merchant order id, so a retry after a crash between the two steps does
// not debit twice.
func (s *Orchestrator) capture(ctx context.Context, order *domain.Order, transactionID string) *ports.VerifyResult {
	l := logger.FromContext(ctx).With(zap.String("merchant_order_id", order.MerchantOrderID))

	if err := s.ledger.Debit(ctx, order.MerchantOrderID, stockLines(order.Items)); err != nil {
		if errors.Is(err, inventorydomain.ErrInsufficientStock) || errors.Is(err, inventorydomain.ErrProductNotFound) {
			l.Error("Payment captured but stock unavailable, refund must be handled manually",
				zap.String("transaction_id", transactionID),
				zap.Error(err),
			)
			return s.markPaymentFailed(ctx, order, err.Error(), transactionID)
		}
		l.Error("Stock debit failed", zap.Error(err))
		s.releaseLease(ctx, order.MerchantOrderID)
		return failure(order, "stock update failed")
	}

	paid, err := s.orders.TransitionStatus(ctx, order.ID, domain.StatusPaymentPending, domain.StatusPaid, domain.StatusPatch{
		PaymentTransactionID: transactionID,
		Shipment:             s.initialShipment(),
	})
	if err != nil {
		if errors.Is(err, domain.ErrStaleState) {
			return s.afterLostCapture(ctx, order)
		}
		l.Error("Failed to record payment", zap.Error(err))
		s.releaseLease(ctx, order.MerchantOrderID)
		return failure(order, "payment could not be recorded")
	}

	l.Info("Payment verified",
		zap.String("order_id", paid.ID),
		zap.String("transaction_id", transactionID),
	)
	s.publish(ctx, events.OrderPaid, newOrderEvent(paid))

	paid = s.attemptShipment(context.WithoutCancel(ctx), paid)
	return &ports.VerifyResult{Outcome: ports.VerifySuccess, Order: paid}
}

// afterLostCapture runs when the order left PAYMENT_PENDING while we were
// debiting, for example an admin cancellation. Our debit is undone unless the
// order ended up paid.
func (s *Orchestrator) afterLostCapture(ctx context.Context, order *domain.Order) *ports.VerifyResult {
	current, err := s.orders.GetByMerchantOrderID(ctx, order.MerchantOrderID)
	if err != nil {
		return failure(order, "order unavailable")
	}
	if !current.Status.PaymentSucceeded() {
		s.releaseStock(ctx, current)
	}
	return replay(current)
}

func (s *Orchestrator) markPaymentFailed(ctx context.Context, order *domain.Order, reason, transactionID string) *ports.VerifyResult {
	failed, err := s.orders.TransitionStatus(ctx, order.ID, domain.StatusPaymentPending, domain.StatusPaymentFailed, domain.StatusPatch{
		PaymentTransactionID: transactionID,
		FailureReason:        reason,
	})
	if err != nil {
		if errors.Is(err, domain.ErrStaleState) {
			return s.replayCurrent(ctx, order.MerchantOrderID)
		}
		logger.FromContext(ctx).Error("Failed to record payment failure",
			zap.String("merchant_order_id", order.MerchantOrderID),
			zap.Error(err),
		)
		s.releaseLease(ctx, order.MerchantOrderID)
		return failure(order, reason)
	}

	// A debit left behind by an earlier interrupted attempt is returned.
	s.releaseStock(ctx, failed)

	ev := newOrderEvent(failed)
	ev.Reason = reason
	s.publish(ctx, events.PaymentFailed, ev)
	return failure(failed, reason)
}

// CreateCodOrder places a cash-on-delivery order. Stock is checked for every
// line, then debited all-or-nothing before the order is stored as CONFIRMED.
func (s *Orchestrator) CreateCodOrder(ctx context.Context, input ports.PlaceOrderInput) (_ *domain.Order, err error) {
	ctx, span := s.tracer.Start(ctx, spanPrefix+"CreateCodOrder")
	started := time.Now()
	defer func() { s.finish(span, useCaseCreateCOD, errorOutcome(err), started, err) }()

	items, err := s.prepare(ctx, input)
	if err != nil {
		return nil, err
	}
	lines := stockLines(items)

	if err := s.ledger.CheckAvailability(ctx, lines); err != nil {
		return nil, classifyStockError(err)
	}

	order, err := s.newOrder(ctx, input, items, domain.PaymentCOD, domain.StatusConfirmed)
	if err != nil {
		return nil, err
	}
	order.Shipment = s.initialShipment()
	span.SetAttributes(attribute.String("order.merchant_id", order.MerchantOrderID))

	if err := s.ledger.Debit(ctx, order.MerchantOrderID, lines); err != nil {
		return nil, classifyStockError(err)
	}

	if err := s.orders.Create(ctx, order); err != nil {
		if rerr := s.ledger.Release(context.WithoutCancel(ctx), order.MerchantOrderID, lines); rerr != nil {
			logger.FromContext(ctx).Error("Failed to release stock after order insert failure",
				zap.String("merchant_order_id", order.MerchantOrderID),
				zap.Error(rerr),
			)
		}
		return nil, fmt.Errorf("create cod order: %w", err)
	}

	logger.FromContext(ctx).Info("COD order created",
		zap.String("order_id", order.ID),
		zap.String("merchant_order_id", order.MerchantOrderID),
	)
	s.publish(ctx, events.OrderCreated, newOrderEvent(order))

	return s.attemptShipment(context.WithoutCancel(ctx), order), nil
}

// prepare validates the checkout request and normalizes its items.
func (s *Orchestrator) prepare(ctx context.Context, input ports.PlaceOrderInput) ([]domain.Item, error) {
	if err := domain.ValidateAmount(input.Amount); err != nil {
		return nil, err
	}
	items, err := domain.NormalizeItems(input.Items)
	if err != nil {
		return nil, err
	}

	addressID := strings.TrimSpace(input.AddressID)
	if addressID == "" {
		return nil, domain.NewValidationError("addressId", "is required")
	}
	if _, err := s.addresses.GetByID(ctx, addressID); err != nil {
		if errors.Is(err, addressdomain.ErrAddressNotFound) {
			return nil, domain.NewMissingReferenceError("addressId", fmt.Sprintf("address %s not found", addressID))
		}
		return nil, fmt.Errorf("load address: %w", err)
	}

	if err := s.ledger.Resolve(ctx, stockLines(items)); err != nil {
		return nil, classifyStockError(err)
	}
	return items, nil
}

func (s *Orchestrator) newOrder(ctx context.Context, input ports.PlaceOrderInput, items []domain.Item, mode domain.PaymentMode, status domain.OrderStatus) (*domain.Order, error) {
	seq, err := s.orders.NextOrderNumber(ctx)
	if err != nil {
		return nil, fmt.Errorf("allocate order number: %w", err)
	}
	return &domain.Order{
		MerchantOrderID:     s.newMerchantOrderID(),
		CustomerOrderNumber: domain.FormatOrderNumber(seq),
		AddressID:           strings.TrimSpace(input.AddressID),
		Amount:              input.Amount,
		Items:               items,
		PaymentMode:         mode,
		Status:              status,
		CreatedAt:           s.now().UTC(),
	}, nil
}

func (s *Orchestrator) initialShipment() *domain.Shipment {
	return &domain.Shipment{
		Status:        domain.ShipmentPending,
		NextAttemptAt: s.now().UTC().Add(s.opts.ShipmentRetryBase),
	}
}

func (s *Orchestrator) generateMerchantOrderID() string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("ORD_%d_%s", s.now().UnixMilli(), suffix)
}

func (s *Orchestrator) callbackURL(merchantOrderID string) string {
	return s.opts.PublicBaseURL + "/orders/payment/verify?merchantId=" + url.QueryEscape(merchantOrderID)
}

func (s *Orchestrator) withInitiateTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.opts.InitiateTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.opts.InitiateTimeout)
}

func (s *Orchestrator) discardPending(ctx context.Context, order *domain.Order) {
	if err := s.orders.DeletePending(context.WithoutCancel(ctx), order.ID); err != nil {
		logger.FromContext(ctx).Error("Failed to remove pending order after initiation failure",
			zap.String("order_id", order.ID),
			zap.String("merchant_order_id", order.MerchantOrderID),
			zap.Error(err),
		)
	}
}

func (s *Orchestrator) releaseLease(ctx context.Context, merchantOrderID string) {
	if err := s.orders.ReleaseVerification(context.WithoutCancel(ctx), merchantOrderID); err != nil {
		logger.FromContext(ctx).Warn("Failed to release verification lease",
			zap.String("merchant_order_id", merchantOrderID),
			zap.Error(err),
		)
	}
}

// releaseStock returns any stock debited under the order's merchant id. It is a
// no-op when nothing was debited.
func (s *Orchestrator) releaseStock(ctx context.Context, order *domain.Order) {
	if err := s.ledger.Release(context.WithoutCancel(ctx), order.MerchantOrderID, stockLines(order.Items)); err != nil {
		logger.FromContext(ctx).Error("Failed to release stock",
			zap.String("merchant_order_id", order.MerchantOrderID),
			zap.Error(err),
		)
	}
}

// settleStock forgets the debit markers of an order whose stock is final.
// PAID is never settled here: a verifier that outlived its lease may still
// replay the debit and relies on the marker to make it a no-op.
func (s *Orchestrator) settleStock(ctx context.Context, order *domain.Order) {
	if err := s.ledger.Settle(context.WithoutCancel(ctx), order.MerchantOrderID, stockLines(order.Items)); err != nil {
		logger.FromContext(ctx).Warn("Failed to settle stock debit",
			zap.String("merchant_order_id", order.MerchantOrderID),
			zap.Error(err),
		)
	}
}

func (s *Orchestrator) replayCurrent(ctx context.Context, merchantOrderID string) *ports.VerifyResult {
	current, err := s.orders.GetByMerchantOrderID(ctx, merchantOrderID)
	if err != nil {
		return failure(nil, "order unavailable")
	}
	if current.Status == domain.StatusPaymentPending {
		return &ports.VerifyResult{Outcome: ports.VerifyPending, Order: current, Reason: "verification in progress"}
	}
	return replay(current)
}

func (s *Orchestrator) publish(ctx context.Context, eventType string, ev orderEvent) {
	if err := s.events.Publish(ctx, eventType, ev.OrderID, ev); err != nil {
		logger.FromContext(ctx).Warn("Failed to publish order event",
			zap.String("event_type", eventType),
			zap.String("order_id", ev.OrderID),
			zap.Error(err),
		)
	}
}

func (s *Orchestrator) finish(span trace.Span, useCase, outcome string, started time.Time, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, outcome)
	} else {
		span.SetStatus(codes.Ok, outcome)
	}
	span.End()
	s.metrics.ObserveUseCase(useCase, outcome, started)
}

// replay maps a stored, already-decided order to a callback outcome.
func replay(order *domain.Order) *ports.VerifyResult {
	switch {
	case order.Status.PaymentSucceeded():
		return &ports.VerifyResult{Outcome: ports.VerifySuccess, Order: order}
	case order.Status == domain.StatusPaymentPending:
		return &ports.VerifyResult{Outcome: ports.VerifyPending, Order: order}
	default:
		return failure(order, order.FailureReason)
	}
}

func failure(order *domain.Order, reason string) *ports.VerifyResult {
	if reason == "" && order != nil {
		reason = strings.ToLower(string(order.Status))
	}
	return &ports.VerifyResult{Outcome: ports.VerifyFailure, Order: order, Reason: reason}
}

func stockLines(items []domain.Item) []inventorydomain.StockLine {
	lines := make([]inventorydomain.StockLine, 0, len(items))
	for _, it := range items {
		lines = append(lines, inventorydomain.StockLine{ProductName: it.ProductName, Quantity: it.Quantity})
	}
	return lines
}

// classifyStockError turns a missing product into a validation failure and
// leaves InsufficientStockError intact for the caller.
func classifyStockError(err error) error {
	if errors.Is(err, inventorydomain.ErrProductNotFound) {
		return domain.NewMissingReferenceError("items", err.Error())
	}
	return err
}

func asGatewayError(err error) error {
	if errors.Is(err, paymentdomain.ErrGateway) {
		return err
	}
	return fmt.Errorf("%w: %w", paymentdomain.ErrGateway, err)
}

func errorOutcome(err error) string {
	if err == nil {
		return metrics.OutcomeSuccess
	}
	if errors.Is(err, domain.ErrValidation) || errors.Is(err, inventorydomain.ErrInsufficientStock) || errors.Is(err, domain.ErrInvalidTransition) {
		return metrics.OutcomeFailure
	}
	return metrics.OutcomeError
}

func verifyOutcome(o ports.VerifyOutcome) string {
	switch o {
	case ports.VerifySuccess:
		return metrics.OutcomeSuccess
	case ports.VerifyPending:
		return metrics.OutcomePending
	default:
		return metrics.OutcomeFailure
	}
}
