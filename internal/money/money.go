// Package money parses and formats currency amounts with exact decimal arithmetic.
package money

import (
	"errors"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

// Scale is the number of fractional digits kept for currency values.
const Scale = 2

var (
	// ErrNotNumeric indicates the input could not be read as a decimal number.
	ErrNotNumeric = errors.New("amount is not a number")
	// ErrNotPositive indicates the amount is zero or negative.
	ErrNotPositive = errors.New("amount must be greater than zero")
	// ErrTooPrecise indicates more than two fractional digits were supplied.
	ErrTooPrecise = errors.New("amount has more than two decimal places")
	// ErrTooLarge indicates the amount does not fit the storage column.
	ErrTooLarge = errors.New("amount is too large")
)

// maxIntegerDigits is the integer part width allowed by NUMERIC(14,2).
const maxIntegerDigits = 12

// maxAmount is the exclusive upper bound imposed by NUMERIC(14,2).
var maxAmount = decimal.New(1, maxIntegerDigits)

// Parse reads a strictly positive currency amount.
// Exponent notation is accepted as long as the value fits two decimals.
func Parse(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrNotNumeric
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrNotNumeric
	}

	if !d.IsPositive() {
		return decimal.Zero, ErrNotPositive
	}

	// Bound the exponent before any arithmetic; rescaling to a huge
	// exponent allocates a power of ten of that size.
	digits, exp := normalize(d)
	if exp < -Scale {
		return decimal.Zero, ErrTooPrecise
	}
	if int64(len(digits))+exp > maxIntegerDigits {
		return decimal.Zero, ErrTooLarge
	}

	coef, _ := new(big.Int).SetString(digits, 10)
	d = decimal.NewFromBigInt(coef, int32(exp))
	if d.GreaterThanOrEqual(maxAmount) {
		return decimal.Zero, ErrTooLarge
	}

	return d.Truncate(Scale), nil
}

// normalize returns the coefficient digits of a positive d without trailing
// zeros, and the exponent adjusted to match.
func normalize(d decimal.Decimal) (string, int64) {
	digits := d.Coefficient().String()
	trimmed := strings.TrimRight(digits, "0")
	return trimmed, int64(d.Exponent()) + int64(len(digits)-len(trimmed))
}

// Format renders d with exactly two fractional digits.
func Format(d decimal.Decimal) string {
	return d.StringFixed(Scale)
}
