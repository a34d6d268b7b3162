// Package types provides common type aliases and utilities.
package types

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Money represents a monetary value with full precision.
// Uses decimal.Decimal to avoid floating-point errors.
type Money = decimal.Decimal

// MoneyScale is the number of fractional digits kept for amounts derived from a percentage.
const MoneyScale int32 = 2

// InputScale is the maximum number of fractional digits accepted for entered costs,
// rates, hours and percentages. It matches the NUMERIC(_, 4) input columns.
const InputScale int32 = 4

var hundred = decimal.NewFromInt(100)

// NewMoney creates a Money value from a float.
// WARNING: Use NewMoneyFromString for precise values.
func NewMoney(f float64) Money {
	return decimal.NewFromFloat(f)
}

// NewMoneyFromString creates a Money value from a string.
// This is the preferred method for monetary values.
func NewMoneyFromString(s string) (Money, error) {
	return decimal.NewFromString(s)
}

// NewMoneyFromInt creates a Money value from an integer.
func NewMoneyFromInt(i int64) Money {
	return decimal.NewFromInt(i)
}

// MustMoney creates a Money value from a string, panics on error.
// Use only for constants and tests.
func MustMoney(s string) Money {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Zero returns zero Money value.
func Zero() Money {
	return decimal.Zero
}

// RoundMoney rounds half away from zero to MoneyScale digits.
func RoundMoney(m Money) Money {
	return m.Round(MoneyScale)
}

// FitsScale reports whether d has at most scale significant fractional digits.
// Trailing zeros do not count: 1.50000 fits scale 2.
func FitsScale(d decimal.Decimal, scale int32) bool {
	return d.Equal(d.Truncate(scale))
}

// ValidateInputScale rejects values with more than InputScale fractional digits.
func ValidateInputScale(d decimal.Decimal) error {
	if !FitsScale(d, InputScale) {
		return fmt.Errorf("%s has more than %d decimal places", d.String(), InputScale)
	}
	return nil
}

// ClampNonNegative returns zero for negative values.
func ClampNonNegative(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// Percent is a percentage in the closed range [0, 100].
type Percent = decimal.Decimal

// MustPercent parses a percentage, panics on error.
func MustPercent(s string) Percent {
	return MustMoney(s)
}

// ValidatePercent checks the 0..100 range.
func ValidatePercent(p Percent) error {
	if p.IsNegative() || p.GreaterThan(hundred) {
		return fmt.Errorf("percentage %s is outside 0..100", p.String())
	}
	return nil
}

// PercentOf returns base × p / 100, rounded to MoneyScale.
func PercentOf(base Money, p Percent) Money {
	return RoundMoney(base.Mul(p).Div(hundred))
}

// Hours is a duration in (possibly fractional) hours.
type Hours = decimal.Decimal
