// Package money formats statement valuations for display. Exact arithmetic
// stays in shopspring/decimal everywhere in the model; this wrapper only
// renders rupee amounts with INR grouping and symbol for report output.
package money

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// INR is the only currency CAS statements are denominated in.
const INR = "INR"

// Money is a display-oriented rupee value.
type Money struct {
	m *money.Money
}

// FromDecimal converts an exact decimal rupee amount to Money, rounding to
// paise. Use only at the display boundary.
func FromDecimal(amount decimal.Decimal) *Money {
	currency := money.GetCurrency(INR)
	cents := amount.Mul(decimal.New(1, int32(currency.Fraction))).Round(0).IntPart()
	return &Money{m: money.New(cents, INR)}
}

// Display renders the amount with the rupee symbol and grouping,
// e.g. "₹1,234.56".
func (m *Money) Display() string {
	if m == nil || m.m == nil {
		return ""
	}
	return m.m.Display()
}

// IsZero reports whether the amount is zero.
func (m *Money) IsZero() bool {
	return m == nil || m.m == nil || m.m.IsZero()
}
