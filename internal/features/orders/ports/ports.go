package ports

import (
	"context"
	"time"

	addressdomain "storefront-api/internal/features/addresses/domain"
	inventorydomain "storefront-api/internal/features/inventory/domain"
	"storefront-api/internal/features/orders/domain"
	paymentdomain "storefront-api/internal/features/payments/domain"
	shippingdomain "storefront-api/internal/features/shipping/domain"

	"github.com/shopspring/decimal"
)

// OrderRepository is the Order Record Store.
// Every status write is conditional on the current status so that concurrent
// callers cannot both win.
type OrderRepository interface {
	// NextOrderNumber atomically allocates the next customer order sequence value.
	NextOrderNumber(ctx context.Context) (int64, error)
	// Create inserts o and assigns o.ID. A reused merchant order id fails with ErrDuplicateOrder.
	Create(ctx context.Context, o *domain.Order) error
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	GetByMerchantOrderID(ctx context.Context, merchantOrderID string) (*domain.Order, error)
	List(ctx context.Context, filter domain.ListFilter) ([]*domain.Order, error)
	// DeletePending removes an order only while it is still PAYMENT_PENDING.
	DeletePending(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error

	// ClaimVerification takes an exclusive lease on a PAYMENT_PENDING order whose
	// previous lease expired before now. It returns ErrStaleState otherwise.
	ClaimVerification(ctx context.Context, merchantOrderID string, now, leaseUntil time.Time) (*domain.Order, error)
	// ReleaseVerification drops the lease so a later callback can retry.
	ReleaseVerification(ctx context.Context, merchantOrderID string) error
	// TransitionStatus moves id from one status to another and applies patch in
	// the same write. It returns ErrStaleState if the order is no longer in from.
	TransitionStatus(ctx context.Context, id string, from, to domain.OrderStatus, patch domain.StatusPatch) (*domain.Order, error)

	// UpdateShipment records a booking attempt. reference is set only on success.
	UpdateShipment(ctx context.Context, id string, shipment domain.Shipment, reference string) error
	UpdateItemStatus(ctx context.Context, id string, index int, status domain.ItemStatus) (*domain.Order, error)
	// ListDueShipments returns orders whose shipment is PENDING and due at now.
	ListDueShipments(ctx context.Context, now time.Time, limit int) ([]*domain.Order, error)
	// ListStalePending returns online PAYMENT_PENDING orders created before cutoff.
	ListStalePending(ctx context.Context, cutoff time.Time, limit int) ([]*domain.Order, error)
}

// StockLedger is the Inventory Ledger as seen by the orchestrator.
type StockLedger interface {
	Resolve(ctx context.Context, lines []inventorydomain.StockLine) error
	CheckAvailability(ctx context.Context, lines []inventorydomain.StockLine) error
	Debit(ctx context.Context, key string, lines []inventorydomain.StockLine) error
	Release(ctx context.Context, key string, lines []inventorydomain.StockLine) error
	Settle(ctx context.Context, key string, lines []inventorydomain.StockLine) error
}

// PaymentGateway is the Payment Gateway Adapter.
type PaymentGateway interface {
	// Initiate opens a checkout session. amount is in rupees.
	Initiate(ctx context.Context, merchantOrderID string, amount decimal.Decimal, redirectURL string) (*paymentdomain.Checkout, error)
	CheckStatus(ctx context.Context, merchantOrderID string) (*paymentdomain.Status, error)
}

// ShippingProvider is the Shipping Adapter.
type ShippingProvider interface {
	CreateShipment(ctx context.Context, c shippingdomain.Consignment) (*shippingdomain.Shipment, error)
}

// AddressLookup resolves the address referenced by an order.
type AddressLookup interface {
	GetByID(ctx context.Context, id string) (*addressdomain.Address, error)
}

// EventPublisher emits order lifecycle events.
type EventPublisher interface {
	Publish(ctx context.Context, eventType, key string, payload any) error
}

// OrderService is the primary port used by the HTTP handler and the worker.
type OrderService interface {
	InitiateOnlineOrder(ctx context.Context, input PlaceOrderInput) (*InitiateResult, error)
	VerifyOnlinePayment(ctx context.Context, merchantOrderID string) *VerifyResult
	CreateCodOrder(ctx context.Context, input PlaceOrderInput) (*domain.Order, error)

	GetOrder(ctx context.Context, id string) (*domain.Order, error)
	ListOrders(ctx context.Context, filter domain.ListFilter) ([]*domain.Order, error)
	UpdateStatus(ctx context.Context, id string, to domain.OrderStatus) (*domain.Order, error)
	UpdateItemStatus(ctx context.Context, id string, index int, status domain.ItemStatus) (*domain.Order, error)
	DeleteOrder(ctx context.Context, id string) error
}

// PlaceOrderInput is the checkout request shared by the online and COD paths.
type PlaceOrderInput struct {
	Amount    decimal.Decimal
	Items     []domain.LineInput
	AddressID string
}

// InitiateResult is returned to the shopper before the gateway redirect.
type InitiateResult struct {
	RedirectURL     string `json:"redirectUrl"`
	MerchantOrderID string `json:"merchantOrderId"`
}

// VerifyOutcome is the user-facing result of a payment callback.
type VerifyOutcome string

const (
	VerifySuccess VerifyOutcome = "SUCCESS"
	VerifyFailure VerifyOutcome = "FAILURE"
	// VerifyPending means the gateway has not settled or another callback is in flight.
	VerifyPending VerifyOutcome = "PENDING"
)

// VerifyResult is always produced; verification never returns an error.
type VerifyResult struct {
	Outcome VerifyOutcome
	Order   *domain.Order
	Reason  string
}
