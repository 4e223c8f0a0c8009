package domain

import (
	"fmt"
	"strings"
)

// StockLine is a quantity of one product to check, debit or restore.
type StockLine struct {
	ProductName string
	Quantity    int
}

// Shortage describes one line that cannot be served.
type Shortage struct {
	ProductName string `json:"productName"`
	Required    int    `json:"required"`
	Available   int    `json:"available"`
}

// InsufficientStockError lists every short line. It unwraps to ErrInsufficientStock.
type InsufficientStockError struct {
	Shortages []Shortage
}

func (e *InsufficientStockError) Error() string {
	parts := make([]string, 0, len(e.Shortages))
	for _, s := range e.Shortages {
		parts = append(parts, fmt.Sprintf("%s (required %d, available %d)", s.ProductName, s.Required, s.Available))
	}
	return "insufficient stock: " + strings.Join(parts, ", ")
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }

// MergeLines sums quantities per product, keeping first-seen order.
func MergeLines(lines []StockLine) []StockLine {
	index := make(map[string]int, len(lines))
	merged := make([]StockLine, 0, len(lines))
	for _, l := range lines {
		if i, ok := index[l.ProductName]; ok {
			merged[i].Quantity += l.Quantity
			continue
		}
		index[l.ProductName] = len(merged)
		merged = append(merged, l)
	}
	return merged
}
