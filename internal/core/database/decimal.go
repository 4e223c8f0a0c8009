package database

import (
	"fmt"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ToDecimal128 converts a money amount to its BSON representation.
func ToDecimal128(d decimal.Decimal) primitive.Decimal128 {
	v, err := primitive.ParseDecimal128(d.String())
	if err != nil {
		// decimal.String never produces input ParseDecimal128 rejects within BSON range.
		return primitive.NewDecimal128(0, 0)
	}
	return v
}

// FromDecimal128 converts a BSON decimal back to a money amount.
func FromDecimal128(v primitive.Decimal128) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(v.String())
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse decimal128 %q: %w", v.String(), err)
	}
	return d, nil
}

// ObjectIDFromHex parses id. ok is false for malformed ids so callers can treat them as not found.
func ObjectIDFromHex(id string) (primitive.ObjectID, bool) {
	oid, err := primitive.ObjectIDFromHex(id)
	return oid, err == nil
}
