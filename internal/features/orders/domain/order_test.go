package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to OrderStatus
		want     bool
	}{
		{StatusPaymentPending, StatusPaid, true},
		{StatusPaymentPending, StatusPaymentFailed, true},
		{StatusPaymentPending, StatusCancelled, true},
		{StatusPaid, StatusConfirmed, true},
		{StatusConfirmed, StatusShipped, true},
		{StatusShipped, StatusDelivered, true},
		{StatusPaid, StatusPaymentPending, false},
		{StatusPaymentFailed, StatusPaid, false},
		{StatusDelivered, StatusShipped, false},
		{StatusCancelled, StatusConfirmed, false},
		{StatusShipped, StatusCancelled, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, CanTransition(tt.from, tt.to))
		})
	}
}

func TestOrderStatus_IsTerminal(t *testing.T) {
	assert.True(t, StatusPaymentFailed.IsTerminal())
	assert.True(t, StatusDelivered.IsTerminal())
	assert.True(t, StatusCancelled.IsTerminal())
	assert.False(t, StatusPaymentPending.IsTerminal())
	assert.False(t, StatusPaid.IsTerminal())
	assert.False(t, StatusConfirmed.IsTerminal())
}

func TestOrder_CheckTransition(t *testing.T) {
	pending := &Order{Status: StatusPaymentPending, PaymentMode: PaymentOnline}
	assert.ErrorIs(t, pending.CheckTransition(StatusPaid), ErrInvalidTransition)
	assert.NoError(t, pending.CheckTransition(StatusCancelled))
	assert.ErrorIs(t, pending.CheckTransition("BOGUS"), ErrValidation)

	online := &Order{Status: StatusConfirmed, PaymentMode: PaymentOnline}
	assert.ErrorIs(t, online.CheckTransition(StatusCancelled), ErrInvalidTransition)
	assert.NoError(t, online.CheckTransition(StatusShipped))

	cod := &Order{Status: StatusConfirmed, PaymentMode: PaymentCOD}
	assert.NoError(t, cod.CheckTransition(StatusCancelled))
}

func TestNormalizeItems(t *testing.T) {
	items, err := NormalizeItems([]LineInput{
		{ProductName: " Sesame Oil 1L ", Quantity: 2, UnitPrice: decimal.NewFromInt(250)},
		{ProductName: "Ghee", ProductImage: "/images/ghee.png", Quantity: 1},
	})
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, "Sesame Oil 1L", items[0].ProductName)
	assert.Equal(t, PlaceholderImage, items[0].ProductImage)
	assert.Equal(t, ItemPending, items[0].ItemStatus)
	assert.Equal(t, "/images/ghee.png", items[1].ProductImage)
}

func TestNormalizeItems_Invalid(t *testing.T) {
	_, err := NormalizeItems(nil)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = NormalizeItems([]LineInput{{ProductName: "Ghee", Quantity: 0}})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "items[0].quantity", verr.Field)

	_, err = NormalizeItems([]LineInput{{ProductName: "Ghee", Quantity: 1, UnitPrice: decimal.NewFromInt(-1)}})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = NormalizeItems([]LineInput{
		{ProductName: "Ghee", Quantity: 1},
		{ProductName: "  ", Quantity: 1},
	})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "items[1].productName", verr.Field)
	assert.NotErrorIs(t, err, ErrReferenceNotFound)
}

func TestValidateAmount(t *testing.T) {
	assert.NoError(t, ValidateAmount(decimal.RequireFromString("0.01")))
	assert.ErrorIs(t, ValidateAmount(decimal.Zero), ErrValidation)
	assert.ErrorIs(t, ValidateAmount(decimal.NewFromInt(-5)), ErrValidation)
}

func TestParseItemStatus(t *testing.T) {
	st, err := ParseItemStatus("SHIPPED")
	require.NoError(t, err)
	assert.Equal(t, ItemShipped, st)

	_, err = ParseItemStatus("LOST")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestFormatOrderNumber(t *testing.T) {
	assert.Equal(t, "MO001", FormatOrderNumber(1))
	assert.Equal(t, "MO042", FormatOrderNumber(42))
	assert.Equal(t, "MO1234", FormatOrderNumber(1234))
}

func TestValidationError_Unwrap(t *testing.T) {
	plain := NewValidationError("amount", "must be greater than 0")
	assert.ErrorIs(t, plain, ErrValidation)
	assert.NotErrorIs(t, plain, ErrReferenceNotFound)
	assert.Equal(t, "amount: must be greater than 0", plain.Error())

	missing := NewMissingReferenceError("addressId", "address not found")
	assert.ErrorIs(t, missing, ErrValidation)
	assert.ErrorIs(t, missing, ErrReferenceNotFound)
}
