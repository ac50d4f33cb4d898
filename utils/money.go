package utils

import (
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// ToMinorUnits converts an amount to the smallest currency unit (paise, cents).
func ToMinorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(hundred).Round(0).IntPart()
}

// FromMinorUnits converts a provider amount in the smallest unit back to a decimal.
func FromMinorUnits(minor int64) decimal.Decimal {
	return decimal.NewFromInt(minor).Div(hundred)
}

// Percent returns amount * pct / 100 rounded to two places.
func Percent(amount, pct decimal.Decimal) decimal.Decimal {
	return amount.Mul(pct).Div(hundred).Round(2)
}

// FormatAmount renders a money value with two decimals, e.g. "9000.00".
func FormatAmount(amount decimal.Decimal) string {
	return amount.StringFixed(2)
}

// HasMinorPrecision reports whether amount is a whole number of minor units.
func HasMinorPrecision(amount decimal.Decimal) bool {
	return amount.Equal(amount.Round(2))
}
