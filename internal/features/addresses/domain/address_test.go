package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAddress_FullName(t *testing.T) {
	assert.Equal(t, "Asha Rao", (&Address{Name: "Asha Rao", FirstName: "X"}).FullName())
	assert.Equal(t, "Asha Rao", (&Address{FirstName: "Asha", LastName: "Rao"}).FullName())
	assert.Equal(t, "Asha", (&Address{FirstName: "Asha"}).FullName())
}

func TestAddress_Validate(t *testing.T) {
	valid := Address{
		Name:         "Asha Rao",
		AddressLine1: "12 Temple Road",
		City:         "Mysuru",
		State:        "Karnataka",
		Pincode:      "570001",
		MobileNumber: "+91 98450 12345",
	}
	assert.NoError(t, valid.Validate())

	err := (&Address{Name: "Asha"}).Validate()
	assert.ErrorIs(t, err, ErrInvalidAddress)
	assert.Contains(t, err.Error(), "addressLine1, city, state, pincode, mobileNumber")
}
