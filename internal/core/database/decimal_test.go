package database

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecimalRoundTrip(t *testing.T) {
	for _, s := range []string{"0", "250", "499.99", "-12.5"} {
		d := decimal.RequireFromString(s)
		back, err := FromDecimal128(ToDecimal128(d))
		require.NoError(t, err)
		assert.True(t, d.Equal(back), "expected %s, got %s", d, back)
	}
}

func TestObjectIDFromHex(t *testing.T) {
	_, ok := ObjectIDFromHex("not-an-id")
	assert.False(t, ok)

	oid, ok := ObjectIDFromHex("65a1b2c3d4e5f60718293a4b")
	assert.True(t, ok)
	assert.Equal(t, "65a1b2c3d4e5f60718293a4b", oid.Hex())
}
