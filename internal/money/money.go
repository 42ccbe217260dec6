// Package money converts decimal currency amounts into the integer minor
// units the change calculator works in.
package money

import (
	"errors"
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// MaxExponent is the largest supported number of minor-unit digits.
const MaxExponent = 6

var (
	// ErrNegativeAmount is returned for amounts below zero.
	ErrNegativeAmount = errors.New("amount must not be negative")
	// ErrPrecision is returned when an amount has more decimal places than the minor unit allows.
	ErrPrecision = errors.New("amount has more decimal places than the currency supports")
	// ErrOverflow is returned when an amount does not fit into an int64 of minor units.
	ErrOverflow = errors.New("amount is too large")
)

// Converter scales decimal amounts by 10^Exponent.
// Exponent 0 treats whole units as the smallest unit; 2 is cents.
type Converter struct {
	Exponent int32
}

// NewConverter returns a Converter, rejecting exponents outside 0..MaxExponent.
func NewConverter(exponent int32) (Converter, error) {
	if exponent < 0 || exponent > MaxExponent {
		return Converter{}, fmt.Errorf("minor unit exponent must be between 0 and %d, got %d", MaxExponent, exponent)
	}
	return Converter{Exponent: exponent}, nil
}

// ToMinor converts a non-negative amount to minor units without rounding.
func (c Converter) ToMinor(amount decimal.Decimal) (int64, error) {
	if amount.IsNegative() {
		return 0, fmt.Errorf("%w: %s", ErrNegativeAmount, amount)
	}
	scaled := amount.Shift(c.Exponent)
	if !scaled.Equal(scaled.Truncate(0)) {
		return 0, fmt.Errorf("%w: %s", ErrPrecision, amount)
	}
	return toInt64(scaled)
}

// FromMinor converts minor units back to a decimal amount.
func (c Converter) FromMinor(units int64) decimal.Decimal {
	return decimal.New(units, -c.Exponent)
}

// ChangeDue returns paid minus due in minor units, rounded half to even.
// Zero or a negative result means nothing is owed back.
func (c Converter) ChangeDue(paid, due decimal.Decimal) (int64, error) {
	return toInt64(paid.Sub(due).Shift(c.Exponent).RoundBank(0))
}

func toInt64(d decimal.Decimal) (int64, error) {
	if d.GreaterThan(decimal.NewFromInt(math.MaxInt64)) || d.LessThan(decimal.NewFromInt(math.MinInt64)) {
		return 0, fmt.Errorf("%w: %s", ErrOverflow, d)
	}
	return d.IntPart(), nil
}
