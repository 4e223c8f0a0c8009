package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation is the sentinel behind every ValidationError.
	ErrValidation = errors.New("validation failed")
	// ErrReferenceNotFound marks a ValidationError for an address or product that does not exist.
	ErrReferenceNotFound = errors.New("referenced record not found")
	// ErrOrderNotFound is returned when no order matches.
	ErrOrderNotFound = errors.New("order not found")
	// ErrInvalidTransition is returned for a status change outside the lifecycle.
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrStaleState is returned when a conditional update matched nothing because
	// another writer moved the order first.
	ErrStaleState = errors.New("order state changed concurrently")
	// ErrItemNotFound is returned for an item index outside the order.
	ErrItemNotFound = errors.New("order item not found")
	// ErrDuplicateOrder is returned when a merchant order id is reused.
	ErrDuplicateOrder = errors.New("duplicate merchant order id")
)

// ValidationError names the offending request field.
type ValidationError struct {
	Field   string
	Message string
	// Missing is set when the field references a record that does not exist.
	Missing bool
}

// NewValidationError creates a ValidationError.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// NewMissingReferenceError creates a ValidationError that also matches ErrReferenceNotFound.
func NewMissingReferenceError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message, Missing: true}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() []error {
	if e.Missing {
		return []error{ErrValidation, ErrReferenceNotFound}
	}
	return []error{ErrValidation}
}
