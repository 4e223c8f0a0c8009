package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

const producerName = "storefront-api"

// Order lifecycle event types.
const (
	OrderCreated       = "OrderCreated"
	OrderPaid          = "OrderPaid"
	PaymentFailed      = "PaymentFailed"
	ShipmentCreated    = "ShipmentCreated"
	ShipmentPending    = "ShipmentPending"
	OrderStatusChanged = "OrderStatusChanged"
)

// Envelope is the wire format of every published event.
type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	CorrelationID string          `json:"correlation_id,omitempty"`
	Payload       json.RawMessage `json:"payload"`
}

// NewEnvelope wraps payload. correlationID is usually the order id.
func NewEnvelope(eventType, correlationID string, payload any) (Envelope, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      producerName,
		CorrelationID: correlationID,
		Payload:       raw,
	}, nil
}

// Publisher emits domain events. Publishing is best-effort: callers log errors and move on.
type Publisher interface {
	Publish(ctx context.Context, eventType, key string, payload any) error
	Close() error
}

// NopPublisher drops every event. Used when no brokers are configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, string, any) error { return nil }
func (NopPublisher) Close() error                                       { return nil }
