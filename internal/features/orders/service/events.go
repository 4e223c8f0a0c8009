package service

import "storefront-api/internal/features/orders/domain"

// orderEvent is the payload of every order lifecycle event.
type orderEvent struct {
	OrderID             string                `json:"order_id"`
	MerchantOrderID     string                `json:"merchant_order_id"`
	CustomerOrderNumber string                `json:"customer_order_number,omitempty"`
	Status              domain.OrderStatus    `json:"status"`
	PreviousStatus      domain.OrderStatus    `json:"previous_status,omitempty"`
	PaymentMode         domain.PaymentMode    `json:"payment_mode"`
	Amount              string                `json:"amount"`
	TransactionID       string                `json:"transaction_id,omitempty"`
	ShippingReference   string                `json:"shipping_reference,omitempty"`
	ShipmentStatus      domain.ShipmentStatus `json:"shipment_status,omitempty"`
	Reason              string                `json:"reason,omitempty"`
}

func newOrderEvent(o *domain.Order) orderEvent {
	ev := orderEvent{
		OrderID:             o.ID,
		MerchantOrderID:     o.MerchantOrderID,
		CustomerOrderNumber: o.CustomerOrderNumber,
		Status:              o.Status,
		PaymentMode:         o.PaymentMode,
		Amount:              o.Amount.String(),
		TransactionID:       o.PaymentTransactionID,
		ShippingReference:   o.ShippingReference,
	}
	if o.Shipment != nil {
		ev.ShipmentStatus = o.Shipment.Status
	}
	return ev
}
