package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrAddressNotFound = errors.New("address not found")
	ErrInvalidAddress  = errors.New("invalid address")
)

// Address is a shipping and contact record referenced by orders.
type Address struct {
	ID           string    `json:"id"`
	CustomerID   string    `json:"customerId,omitempty"`
	Name         string    `json:"name,omitempty"`
	FirstName    string    `json:"firstName,omitempty"`
	LastName     string    `json:"lastName,omitempty"`
	AddressLine1 string    `json:"addressLine1"`
	AddressLine2 string    `json:"addressLine2,omitempty"`
	Landmark     string    `json:"landmark,omitempty"`
	City         string    `json:"city"`
	State        string    `json:"state"`
	Pincode      string    `json:"pincode"`
	MobileNumber string    `json:"mobileNumber"`
	Email        string    `json:"email,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// FullName prefers Name and falls back to first and last name.
func (a *Address) FullName() string {
	if a.Name != "" {
		return a.Name
	}
	return strings.TrimSpace(a.FirstName + " " + a.LastName)
}

// Validate checks the fields a courier needs.
func (a *Address) Validate() error {
	var missing []string
	if a.FullName() == "" {
		missing = append(missing, "name")
	}
	if strings.TrimSpace(a.AddressLine1) == "" {
		missing = append(missing, "addressLine1")
	}
	if strings.TrimSpace(a.City) == "" {
		missing = append(missing, "city")
	}
	if strings.TrimSpace(a.State) == "" {
		missing = append(missing, "state")
	}
	if strings.TrimSpace(a.Pincode) == "" {
		missing = append(missing, "pincode")
	}
	if strings.TrimSpace(a.MobileNumber) == "" {
		missing = append(missing, "mobileNumber")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrInvalidAddress, strings.Join(missing, ", "))
	}
	return nil
}
