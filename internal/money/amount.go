// =============================================================================
// Payments Engine - Monetary Amounts
// =============================================================================
//
// This package defines the fixed-precision monetary types used by the ledger.
// Every amount carries exactly four fractional digits, which is also the
// precision of the account report.
//
// ARITHMETIC:
//   Amounts are backed by shopspring/decimal, so repeated additions and
//   subtractions never drift the way binary floating point does.
//
// =============================================================================

package money

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Scale is the number of fractional digits carried by every Amount.
const Scale int32 = 4

// Zero is the zero amount.
var Zero = Amount{value: decimal.Zero}

// Amount is a monetary value with exactly Scale fractional digits.
// The zero value is a valid zero amount.
type Amount struct {
	value decimal.Decimal
}

// ParseAmount parses a decimal string into an Amount.
//
// An empty (or all-whitespace) string is treated as zero, matching the input
// format where dispute-family rows leave the amount column blank. Values with
// more than Scale fractional digits are rounded half away from zero.
func ParseAmount(s string) (Amount, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Zero, nil
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return Amount{}, fmt.Errorf("invalid amount %q: %w", s, err)
	}

	return Amount{value: d.Round(Scale)}, nil
}

// MustParseAmount is like ParseAmount but panics on error.
// It is intended for constants and tests.
func MustParseAmount(s string) Amount {
	a, err := ParseAmount(s)
	if err != nil {
		panic(err)
	}
	return a
}

// NewFromDecimal rounds d to Scale places and wraps it.
func NewFromDecimal(d decimal.Decimal) Amount {
	return Amount{value: d.Round(Scale)}
}

// Add returns a + other.
func (a Amount) Add(other Amount) Amount {
	return Amount{value: a.value.Add(other.value)}
}

// Sub returns a - other.
func (a Amount) Sub(other Amount) Amount {
	return Amount{value: a.value.Sub(other.value)}
}

// Cmp compares a and other and returns -1, 0 or +1.
func (a Amount) Cmp(other Amount) int {
	return a.value.Cmp(other.value)
}

// GreaterThanOrEqual reports whether a >= other.
func (a Amount) GreaterThanOrEqual(other Amount) bool {
	return a.value.GreaterThanOrEqual(other.value)
}

// Equal reports whether a and other represent the same value.
func (a Amount) Equal(other Amount) bool {
	return a.value.Equal(other.value)
}

// IsZero reports whether a is zero.
func (a Amount) IsZero() bool {
	return a.value.IsZero()
}

// IsNegative reports whether a is below zero.
func (a Amount) IsNegative() bool {
	return a.value.IsNegative()
}

// Decimal returns the underlying decimal value.
func (a Amount) Decimal() decimal.Decimal {
	return a.value
}

// String renders the amount with exactly Scale fractional digits.
func (a Amount) String() string {
	return a.value.StringFixed(Scale)
}
