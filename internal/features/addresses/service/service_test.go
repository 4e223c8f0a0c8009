package service

import (
	"context"
	"testing"

	"storefront-api/internal/features/addresses/adapters"
	"storefront-api/internal/features/addresses/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validAddress() *domain.Address {
	return &domain.Address{
		CustomerID:   "cust-1",
		Name:         "Asha Rao",
		AddressLine1: "12 Temple Road",
		City:         "Mysuru",
		State:        "Karnataka",
		Pincode:      "570001",
		MobileNumber: "9845012345",
	}
}

func TestAddressService_CreateAndGet(t *testing.T) {
	svc := NewAddressService(adapters.NewMemoryAddressRepository())
	ctx := context.Background()

	created, err := svc.Create(ctx, validAddress())
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.False(t, created.CreatedAt.IsZero())

	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Asha Rao", got.Name)

	list, err := svc.ListByCustomer(ctx, "cust-1")
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestAddressService_Errors(t *testing.T) {
	svc := NewAddressService(adapters.NewMemoryAddressRepository())
	ctx := context.Background()

	_, err := svc.Create(ctx, &domain.Address{})
	assert.ErrorIs(t, err, domain.ErrInvalidAddress)

	_, err = svc.Get(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrAddressNotFound)

	_, err = svc.ListByCustomer(ctx, "")
	assert.ErrorIs(t, err, domain.ErrInvalidAddress)
}
