package utils

import (
	"errors"
	"math"

	"github.com/shopspring/decimal"
)

// Order totals are stored in major units (rupees); the payment provider works
// in minor units (paise). These helpers are the only place the two meet.

var (
	ErrNonFiniteAmount  = errors.New("amount is not a finite number")
	ErrAmountOutOfRange = errors.New("amount does not fit in minor units")
)

var (
	hundred  = decimal.NewFromInt(100)
	maxMinor = decimal.NewFromInt(math.MaxInt64)
	minMinor = decimal.NewFromInt(math.MinInt64)
)

// ToMinorUnits converts a major-unit amount to minor units, rounding half away
// from zero. Amounts whose minor-unit value does not fit in an int64 return
// ErrAmountOutOfRange.
func ToMinorUnits(amount float64) (int64, error) {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return 0, ErrNonFiniteAmount
	}
	minor := decimal.NewFromFloat(amount).Mul(hundred).Round(0)
	if minor.GreaterThan(maxMinor) || minor.LessThan(minMinor) {
		return 0, ErrAmountOutOfRange
	}
	return minor.IntPart(), nil
}

// FromMinorUnits converts a minor-unit amount back to major units
func FromMinorUnits(minor int64) float64 {
	f, _ := decimal.New(minor, -2).Float64()
	return f
}

// RoundMajor rounds a major-unit amount to two decimal places
func RoundMajor(amount float64) float64 {
	f, _ := decimal.NewFromFloat(amount).Round(2).Float64()
	return f
}
