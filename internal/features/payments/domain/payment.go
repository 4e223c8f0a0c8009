package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrGateway covers an unreachable provider or an unusable response.
	ErrGateway = errors.New("payment gateway error")
	// ErrAuth is a credential rejection. It is a kind of ErrGateway.
	ErrAuth = fmt.Errorf("%w: authentication rejected", ErrGateway)
)

// State is the business state of a payment as reported by the provider.
type State string

const (
	StateCompleted State = "COMPLETED"
	StateFailed    State = "FAILED"
	StatePending   State = "PENDING"
)

// Token is a bearer credential for the provider API.
type Token struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// Valid reports whether the token can still be used at now, keeping skew in reserve.
func (t *Token) Valid(now time.Time, skew time.Duration) bool {
	return t != nil && t.AccessToken != "" && now.Add(skew).Before(t.ExpiresAt)
}

// Status is the result of an order status check.
type Status struct {
	State         State
	TransactionID string
}

// Checkout is the result of a payment initiation.
type Checkout struct {
	// RedirectURL is the provider page the shopper is sent to.
	RedirectURL string
	// ProviderOrderID is the provider's own id for the payment session.
	ProviderOrderID string
}
