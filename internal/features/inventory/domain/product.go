package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	// ErrProductNotFound is returned when no product matches the lookup key.
	ErrProductNotFound = errors.New("product not found")
	// ErrInsufficientStock is returned when a debit would drive stock below zero.
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrDebitAlreadyApplied is returned when a debit key was already applied to a product.
	ErrDebitAlreadyApplied = errors.New("debit already applied")
	// ErrDuplicateProduct is returned when a product name is already taken.
	ErrDuplicateProduct = errors.New("product name already exists")
	// ErrInvalidProduct is returned for malformed product input.
	ErrInvalidProduct = errors.New("invalid product")
)

// Variant is a purchasable size of a product.
type Variant struct {
	// Quantity is the size label, e.g. "500ml" or "1L".
	Quantity      string          `json:"quantity"`
	Price         decimal.Decimal `json:"price"`
	DiscountPrice decimal.Decimal `json:"discountPrice"`
	Unit          string          `json:"unit"`
}

// Product is a catalog entry. Name is unique and is the key used by order lines.
type Product struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Category    string    `json:"category,omitempty"`
	Description string    `json:"description,omitempty"`
	Images      []string  `json:"images,omitempty"`
	Stock       int       `json:"stock"`
	SoldStock   int       `json:"soldStock"`
	Variants    []Variant `json:"variants"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// ProductPatch is a partial catalog update. Nil fields are left as they are.
// The name is not patchable: order lines and stock debits refer to it.
type ProductPatch struct {
	Category    *string
	Description *string
	Images      []string
	Stock       *int
	Variants    []Variant
}

// Validate checks the fields present in the patch and fills variant defaults.
func (p *ProductPatch) Validate() error {
	if p.Stock != nil && *p.Stock < 0 {
		return fmt.Errorf("%w: stock must not be negative", ErrInvalidProduct)
	}
	if p.Variants != nil {
		if len(p.Variants) == 0 {
			return fmt.Errorf("%w: at least one variant is required", ErrInvalidProduct)
		}
		if err := validateVariants(p.Variants); err != nil {
			return err
		}
	}
	return nil
}

// Apply writes the patch onto p.
func (p *Product) Apply(patch ProductPatch, now time.Time) {
	if patch.Category != nil {
		p.Category = *patch.Category
	}
	if patch.Description != nil {
		p.Description = *patch.Description
	}
	if patch.Images != nil {
		p.Images = append([]string(nil), patch.Images...)
	}
	if patch.Stock != nil {
		p.Stock = *patch.Stock
	}
	if patch.Variants != nil {
		p.Variants = append([]Variant(nil), patch.Variants...)
	}
	p.UpdatedAt = now
}

// NewProduct validates input and returns a product with zero sold stock.
func NewProduct(name, category, description string, images []string, stock int, variants []Variant) (*Product, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidProduct)
	}
	if stock < 0 {
		return nil, fmt.Errorf("%w: stock must not be negative", ErrInvalidProduct)
	}
	if err := validateVariants(variants); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return &Product{
		Name:        name,
		Category:    category,
		Description: description,
		Images:      images,
		Stock:       stock,
		Variants:    variants,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

func validateVariants(variants []Variant) error {
	for i := range variants {
		if variants[i].Quantity == "" {
			return fmt.Errorf("%w: variant %d quantity is required", ErrInvalidProduct, i)
		}
		if variants[i].Price.IsNegative() {
			return fmt.Errorf("%w: variant %d price must not be negative", ErrInvalidProduct, i)
		}
		if variants[i].Unit == "" {
			variants[i].Unit = "pcs"
		}
	}
	return nil
}
