package services

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FormatINR formats an amount in Indian Rupee notation.
// After the rightmost 3 digits, digits are grouped in pairs
// (e.g., ₹1,23,45,678.9). At most 2 decimal places are shown and trailing
// zeros are dropped, so whole amounts print without a fraction.
func FormatINR(amount decimal.Decimal) string {
	negative := amount.IsNegative()
	raw := amount.Abs().Round(2).String()

	intPart, decPart, _ := strings.Cut(raw, ".")
	decPart = strings.TrimRight(decPart, "0")

	result := "₹" + applyIndianGrouping(intPart)
	if decPart != "" {
		result += "." + decPart
	}
	if negative && result != "₹0" {
		result = "-" + result
	}
	return result
}

// FormatINRFloat is FormatINR for values read straight off records.
func FormatINRFloat(amount float64) string {
	return FormatINR(decimal.NewFromFloat(amount))
}

// FormatINRFixed always prints 2 decimal places. Used on exported documents
// where columns must line up.
func FormatINRFixed(amount decimal.Decimal) string {
	negative := amount.IsNegative()
	intPart, decPart, _ := strings.Cut(amount.Abs().StringFixed(2), ".")
	result := "₹" + applyIndianGrouping(intPart) + "." + decPart
	if negative && !amount.Round(2).IsZero() {
		result = "-" + result
	}
	return result
}

// applyIndianGrouping inserts commas into an integer string using the
// Indian numbering system: the rightmost 3 digits form the first group,
// then every 2 digits form subsequent groups.
func applyIndianGrouping(s string) string {
	n := len(s)
	if n <= 3 {
		return s
	}

	result := s[n-3:]
	remaining := s[:n-3]

	for len(remaining) > 2 {
		result = remaining[len(remaining)-2:] + "," + result
		remaining = remaining[:len(remaining)-2]
	}
	if len(remaining) > 0 {
		result = remaining + "," + result
	}

	return result
}
