package model

import (
	"github.com/shopspring/decimal"
)

// ParsePrice converts a decimal string (e.g. "5.50") to a price.
// Empty or malformed input yields zero, matching how the backend treats
// missing prices.
// Examples: "99.00" → 99, "1234.56" → 1234.56, "" → 0
func ParsePrice(s string) decimal.Decimal {
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// FormatPrice renders a price with exactly two decimals.
// Examples: 16.5 → "16.50", 20 → "20.00"
func FormatPrice(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// Cents converts a price to minor units, rounding half away from zero.
func Cents(d decimal.Decimal) int64 {
	return d.Shift(2).Round(0).IntPart()
}
