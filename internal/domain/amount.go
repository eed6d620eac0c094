package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Bounds on accepted amounts. Anything outside them is treated as invalid
// input: decimal arithmetic rescales operands to a common exponent, so an
// input like "1e30000000" would otherwise cost gigabytes on the next sum.
const (
	minAmountExponent = -20
	maxAmountExponent = 15
)

// MaxAmount is the largest amount the model accepts.
var MaxAmount = decimal.New(1, maxAmountExponent)

// ParseAmount normalizes user input into a non-negative amount.
// Empty, unparsable, negative and out-of-range input all become zero.
func ParseAmount(s string) decimal.Decimal {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return ClampAmount(d)
}

// ClampAmount coerces negative and out-of-range amounts to zero.
func ClampAmount(d decimal.Decimal) decimal.Decimal {
	if exp := d.Exponent(); exp < minAmountExponent || exp > maxAmountExponent {
		return decimal.Zero
	}
	if d.IsNegative() || d.GreaterThan(MaxAmount) {
		return decimal.Zero
	}
	return d
}
