package domain

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"
)

var (
	ErrInvalidContact  = errors.New("invalid contact submission")
	ErrContactNotFound = errors.New("contact not found")
)

// Contact is a message left through the storefront contact form.
type Contact struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Subject   string    `json:"subject,omitempty"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}

// Normalize trims the fields and checks the required ones.
func (c *Contact) Normalize() error {
	c.Name = strings.TrimSpace(c.Name)
	c.Email = strings.TrimSpace(c.Email)
	c.Phone = strings.TrimSpace(c.Phone)
	c.Subject = strings.TrimSpace(c.Subject)
	c.Message = strings.TrimSpace(c.Message)

	switch {
	case c.Name == "":
		return fmt.Errorf("%w: name is required", ErrInvalidContact)
	case c.Message == "":
		return fmt.Errorf("%w: message is required", ErrInvalidContact)
	case c.Email == "" && c.Phone == "":
		return fmt.Errorf("%w: email or phone is required", ErrInvalidContact)
	}
	if c.Email != "" {
		if _, err := mail.ParseAddress(c.Email); err != nil {
			return fmt.Errorf("%w: email is malformed", ErrInvalidContact)
		}
	}
	return nil
}
