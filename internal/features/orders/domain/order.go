package domain

import (
	"fmt"
	"time"

	addressdomain "storefront-api/internal/features/addresses/domain"

	"github.com/shopspring/decimal"
)

// OrderStatus is the overall lifecycle state of an order.
type OrderStatus string

const (
	// StatusPaymentPending is an online order waiting for the gateway callback.
	StatusPaymentPending OrderStatus = "PAYMENT_PENDING"
	// StatusPaid is an online order whose payment was captured and stock debited.
	StatusPaid OrderStatus = "PAID"
	// StatusPaymentFailed is terminal: the gateway declined or stock ran out after capture.
	StatusPaymentFailed OrderStatus = "PAYMENT_FAILED"
	// StatusConfirmed is accepted for fulfillment. COD orders start here.
	StatusConfirmed OrderStatus = "CONFIRMED"
	StatusShipped   OrderStatus = "SHIPPED"
	StatusDelivered OrderStatus = "DELIVERED"
	StatusCancelled OrderStatus = "CANCELLED"
)

// PaymentMode is how the customer pays.
type PaymentMode string

const (
	PaymentCOD    PaymentMode = "COD"
	PaymentOnline PaymentMode = "ONLINE"
)

// ItemStatus tracks one line independently of the order.
type ItemStatus string

const (
	ItemPending   ItemStatus = "PENDING"
	ItemShipped   ItemStatus = "SHIPPED"
	ItemDelivered ItemStatus = "DELIVERED"
)

// ShipmentStatus is the fulfillment sub-state of a paid or confirmed order.
type ShipmentStatus string

const (
	// ShipmentPending means a booking is due, either first try or retry.
	ShipmentPending ShipmentStatus = "PENDING"
	ShipmentCreated ShipmentStatus = "CREATED"
	// ShipmentFailed means retries are exhausted and fulfillment is manual.
	ShipmentFailed ShipmentStatus = "FAILED"
)

// Order is one checkout attempt.
type Order struct {
	ID                   string          `json:"id"`
	MerchantOrderID      string          `json:"merchantOrderId"`
	CustomerOrderNumber  string          `json:"customerOrderNumber"`
	AddressID            string          `json:"addressId"`
	Amount               decimal.Decimal `json:"amount"`
	Items                []Item          `json:"items"`
	PaymentMode          PaymentMode     `json:"paymentMode"`
	Status               OrderStatus     `json:"status"`
	PaymentTransactionID string          `json:"paymentTransactionId,omitempty"`
	ShippingReference    string          `json:"shippingReference,omitempty"`
	FailureReason        string          `json:"failureReason,omitempty"`
	Shipment             *Shipment       `json:"shipment,omitempty"`
	// VerifyLeaseUntil marks an in-flight payment verification.
	VerifyLeaseUntil time.Time `json:"-"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
	// Address is filled in for admin reads only. It is never stored with the order.
	Address *addressdomain.Address `json:"address,omitempty"`
}

// Item is one order line.
type Item struct {
	ProductName  string          `json:"productName"`
	ProductImage string          `json:"productImage,omitempty"`
	Quantity     int             `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unitPrice"`
	ItemStatus   ItemStatus      `json:"itemStatus"`
}

// Shipment records booking attempts with the shipping provider.
type Shipment struct {
	Status        ShipmentStatus `json:"status"`
	Attempts      int            `json:"attempts"`
	NextAttemptAt time.Time      `json:"nextAttemptAt,omitempty"`
	LastError     string         `json:"lastError,omitempty"`
}

// StatusPatch carries the fields written together with a status change.
type StatusPatch struct {
	PaymentTransactionID string
	FailureReason        string
	// Shipment, when set, replaces the shipment sub-state.
	Shipment *Shipment
}

// ListFilter narrows admin listings.
type ListFilter struct {
	Status      OrderStatus
	PaymentMode PaymentMode
	Limit       int
	Offset      int
}

var transitions = map[OrderStatus][]OrderStatus{
	StatusPaymentPending: {StatusPaid, StatusPaymentFailed, StatusCancelled},
	StatusPaid:           {StatusConfirmed},
	StatusConfirmed:      {StatusShipped, StatusCancelled},
	StatusShipped:        {StatusDelivered},
}

// CanTransition reports whether from -> to is an edge of the lifecycle.
func CanTransition(from, to OrderStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transition is allowed.
func (s OrderStatus) IsTerminal() bool {
	return len(transitions[s]) == 0
}

// Valid reports whether s is a known status.
func (s OrderStatus) Valid() bool {
	switch s {
	case StatusPaymentPending, StatusPaid, StatusPaymentFailed, StatusConfirmed,
		StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// PaymentSucceeded reports whether the order got past payment.
func (s OrderStatus) PaymentSucceeded() bool {
	switch s {
	case StatusPaid, StatusConfirmed, StatusShipped, StatusDelivered:
		return true
	}
	return false
}

// ParseItemStatus validates an item status string.
func ParseItemStatus(s string) (ItemStatus, error) {
	switch st := ItemStatus(s); st {
	case ItemPending, ItemShipped, ItemDelivered:
		return st, nil
	}
	return "", NewValidationError("itemStatus", fmt.Sprintf("must be one of %s, %s, %s", ItemPending, ItemShipped, ItemDelivered))
}

// CheckTransition validates a status change requested for o.
func (o *Order) CheckTransition(to OrderStatus) error {
	if !to.Valid() {
		return NewValidationError("status", fmt.Sprintf("unknown status %q", to))
	}
	if !CanTransition(o.Status, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, o.Status, to)
	}
	// Payment outcomes are owned by verification.
	if o.Status == StatusPaymentPending && (to == StatusPaid || to == StatusPaymentFailed) {
		return fmt.Errorf("%w: %s is set by payment verification", ErrInvalidTransition, to)
	}
	// Online stock is debited at capture and is not released here.
	if o.Status == StatusConfirmed && to == StatusCancelled && o.PaymentMode != PaymentCOD {
		return fmt.Errorf("%w: only COD orders can be cancelled after confirmation", ErrInvalidTransition)
	}
	return nil
}

// StockSettled reports whether the stock debited for o is final: no lifecycle
// edge left can return it.
func (o *Order) StockSettled() bool {
	switch o.Status {
	case StatusShipped, StatusDelivered:
		return true
	case StatusConfirmed:
		return o.PaymentMode == PaymentOnline
	}
	return false
}

// HoldsStock reports whether a debit was taken for o and not returned.
func (o *Order) HoldsStock() bool {
	return o.Status.PaymentSucceeded()
}

// ClientOrderNo is the reference handed to the shipping provider.
func (o *Order) ClientOrderNo() string {
	if o.CustomerOrderNumber != "" {
		return o.CustomerOrderNumber
	}
	return o.ID
}

// FormatOrderNumber renders a counter value as MO001, MO002, ...
func FormatOrderNumber(seq int64) string {
	return fmt.Sprintf("MO%03d", seq)
}
