// Package quantity holds the decimal arithmetic helpers shared by the
// metabolic and nutrition calculators and the daily ledger. All derived
// quantities are computed exactly; rounding happens only where a stored or
// displayed value is defined to be rounded.
package quantity

import (
	"fmt"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// FromFloat lifts a REAL column value into an exact decimal.
func FromFloat(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f)
}

func FromInt(n int) decimal.Decimal {
	return decimal.NewFromInt(int64(n))
}

// RoundKcal rounds to the nearest whole kilocalorie.
func RoundKcal(d decimal.Decimal) int {
	return int(d.Round(0).IntPart())
}

// RoundTenth rounds to one decimal place, the precision used for gram and
// percentage values.
func RoundTenth(d decimal.Decimal) decimal.Decimal {
	return d.Round(1)
}

// PercentShare returns part/total as a percentage to one decimal place.
// A zero or negative total yields 0 rather than a division error.
func PercentShare(part, total decimal.Decimal) decimal.Decimal {
	if total.Sign() <= 0 {
		return decimal.Zero
	}
	return part.Div(total).Mul(hundred).Round(1)
}

// ClampNonNegative floors a running total at zero.
func ClampNonNegative(d decimal.Decimal) decimal.Decimal {
	if d.Sign() < 0 {
		return decimal.Zero
	}
	return d
}

// Parse reads a decimal stored as TEXT; the empty string means zero.
func Parse(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse decimal %q: %w", s, err)
	}
	return d, nil
}
