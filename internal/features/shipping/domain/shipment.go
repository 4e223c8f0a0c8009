package domain

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrShipping is returned when the provider cannot accept a consignment.
// It never fails the order that triggered it.
var ErrShipping = errors.New("shipping provider failure")

// Recipient is the delivery contact as stored on the address record.
type Recipient struct {
	FullName     string
	AddressLine1 string
	AddressLine2 string
	Landmark     string
	City         string
	State        string
	Pincode      string
	Phone        string
	Email        string
}

// Item is one order line offered to the provider.
type Item struct {
	Name      string
	Quantity  int
	UnitPrice decimal.Decimal
}

// Consignment is everything the provider needs to book a forward shipment.
type Consignment struct {
	// ClientOrderNo is the shop's reference echoed back by the provider.
	ClientOrderNo string
	Prepaid       bool
	TotalAmount   decimal.Decimal
	Recipient     Recipient
	Items         []Item
}

// Shipment is the provider's acknowledgement.
type Shipment struct {
	ProviderOrderNo string
	// Acknowledgement is the raw provider reply, kept for support lookups.
	Acknowledgement string
}

// CleanPhone keeps the last 10 digits of a phone number.
func CleanPhone(phone string) string {
	digits := onlyDigits(phone)
	if len(digits) > 10 {
		digits = digits[len(digits)-10:]
	}
	return digits
}

// CleanPincode keeps the first 6 digits of a postal code.
func CleanPincode(pin string) string {
	digits := onlyDigits(pin)
	if len(digits) > 6 {
		digits = digits[:6]
	}
	return digits
}

func onlyDigits(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
}
