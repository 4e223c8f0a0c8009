package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanPhone(t *testing.T) {
	assert.Equal(t, "9876543210", CleanPhone("+91 98765-43210"))
	assert.Equal(t, "12345", CleanPhone("12-345"))
	assert.Equal(t, "", CleanPhone(""))
}

func TestCleanPincode(t *testing.T) {
	assert.Equal(t, "570001", CleanPincode("570 001"))
	assert.Equal(t, "570001", CleanPincode("5700012"))
	assert.Equal(t, "", CleanPincode("n/a"))
}
