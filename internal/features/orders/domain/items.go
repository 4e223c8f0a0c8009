package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// PlaceholderImage is used for lines submitted without an image.
const PlaceholderImage = "/images/placeholder.png"

// LineInput is an order line as accepted at the HTTP boundary, after aliases
// have been folded.
type LineInput struct {
	ProductName  string
	ProductImage string
	Quantity     int
	UnitPrice    decimal.Decimal
}

// NormalizeItems converts request lines into the canonical item schema. The
// product name is the stock key, so a line without one is rejected.
func NormalizeItems(lines []LineInput) ([]Item, error) {
	if len(lines) == 0 {
		return nil, NewValidationError("items", "must not be empty")
	}

	items := make([]Item, 0, len(lines))
	for i, l := range lines {
		if l.Quantity <= 0 {
			return nil, NewValidationError(fmt.Sprintf("items[%d].quantity", i), "must be greater than 0")
		}
		if l.UnitPrice.IsNegative() {
			return nil, NewValidationError(fmt.Sprintf("items[%d].unitPrice", i), "must not be negative")
		}

		name := strings.TrimSpace(l.ProductName)
		if name == "" {
			return nil, NewValidationError(fmt.Sprintf("items[%d].productName", i), "is required")
		}
		image := strings.TrimSpace(l.ProductImage)
		if image == "" {
			image = PlaceholderImage
		}

		items = append(items, Item{
			ProductName:  name,
			ProductImage: image,
			Quantity:     l.Quantity,
			UnitPrice:    l.UnitPrice,
			ItemStatus:   ItemPending,
		})
	}
	return items, nil
}

// ValidateAmount requires a positive payable amount.
func ValidateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return NewValidationError("amount", "must be greater than 0")
	}
	return nil
}
