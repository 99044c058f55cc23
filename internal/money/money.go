// Package money provides the fixed-point currency amount used across the ledger.
//
// Amounts are stored as signed integer minor units (cents). Conversion to and
// from decimal text happens only at the boundaries (request parsing, export,
// CLI output), so ledger arithmetic never needs rounding.
package money

import (
	"errors"
	"math"
	"strings"

	gomoney "github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Scale is the number of decimal places carried by an Amount.
const Scale = 2

// DefaultCurrency is used for display when no currency is configured.
const DefaultCurrency = "USD"

// ErrInvalidAmount is returned when a decimal string cannot be parsed or
// does not fit in an Amount.
var ErrInvalidAmount = errors.New("invalid amount")

var (
	maxCents = decimal.NewFromInt(math.MaxInt64)
	minCents = decimal.NewFromInt(math.MinInt64)
)

// Amount is a signed amount of money in minor units.
type Amount int64

// Cents returns the amount in minor units.
func (a Amount) Cents() int64 { return int64(a) }

// Neg returns -a.
func (a Amount) Neg() Amount { return -a }

// IsPositive reports whether a > 0.
func (a Amount) IsPositive() bool { return a > 0 }

// IsNegative reports whether a < 0.
func (a Amount) IsNegative() bool { return a < 0 }

// Decimal returns the amount as a decimal in major units.
func (a Amount) Decimal() decimal.Decimal {
	return decimal.New(int64(a), -Scale)
}

// String renders the amount with exactly two decimals, e.g. "-20.00".
func (a Amount) String() string {
	return a.Decimal().StringFixed(Scale)
}

// Format renders the amount for humans in the given ISO 4217 currency.
func (a Amount) Format(currency string) string {
	if currency == "" {
		currency = DefaultCurrency
	}
	return gomoney.New(int64(a), currency).Display()
}

// FromDecimal converts a major-unit decimal to an Amount, rounding half away
// from zero on the third decimal place. Values outside the int64 cent range
// are rejected with ErrInvalidAmount.
func FromDecimal(d decimal.Decimal) (Amount, error) {
	cents := d.Round(Scale).Shift(Scale)
	if cents.GreaterThan(maxCents) || cents.LessThan(minCents) {
		return 0, ErrInvalidAmount
	}
	return Amount(cents.IntPart()), nil
}

// FromFloat converts a major-unit float (as found in legacy JSON exports).
func FromFloat(f float64) (Amount, error) {
	return FromDecimal(decimal.NewFromFloat(f))
}

// Parse reads a decimal string such as "12.34" or "12,34".
func Parse(s string) (Amount, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", "."))
	if s == "" {
		return 0, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	return FromDecimal(d)
}

// ParsePositive is Parse restricted to amounts greater than zero.
func ParsePositive(s string) (Amount, error) {
	a, err := Parse(s)
	if err != nil {
		return 0, err
	}
	if !a.IsPositive() {
		return 0, ErrInvalidAmount
	}
	return a, nil
}

// MarshalJSON encodes the amount as a JSON number in major units, e.g. 850.00.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalJSON accepts a JSON number or a quoted decimal string in major units.
func (a *Amount) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "null" {
		return nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return ErrInvalidAmount
	}
	v, err := FromDecimal(d)
	if err != nil {
		return err
	}
	*a = v
	return nil
}

// Add returns a+b and false when the sum overflows.
func (a Amount) Add(b Amount) (Amount, bool) {
	sum := a + b
	if (b > 0 && sum < a) || (b < 0 && sum > a) {
		return 0, false
	}
	return sum, true
}

// Sum adds up amounts.
func Sum(amounts ...Amount) Amount {
	var total Amount
	for _, a := range amounts {
		total += a
	}
	return total
}
