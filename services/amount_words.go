package services

import (
	"strings"

	"github.com/shopspring/decimal"
)

// AmountToWords spells out a rupee amount in Indian English for printed
// offers. Paise are rounded to the nearest whole paisa.
// Example: 249000.50 → "Rupees Two Lakhs Forty Nine Thousand and Fifty Paise Only"
func AmountToWords(amount decimal.Decimal) string {
	if amount.IsNegative() {
		return "Minus " + AmountToWords(amount.Neg())
	}

	amount = amount.Round(2)
	rupees := amount.IntPart()
	paise := amount.Sub(decimal.NewFromInt(rupees)).Mul(hundred).IntPart()

	if rupees == 0 && paise == 0 {
		return "Rupees Zero Only"
	}

	var b strings.Builder
	b.WriteString("Rupees")
	if rupees > 0 {
		b.WriteString(" " + indianWords(rupees))
	}
	if paise > 0 {
		if rupees > 0 {
			b.WriteString(" and")
		}
		b.WriteString(" " + wordsUnder100(paise) + " Paise")
	}
	b.WriteString(" Only")
	return b.String()
}

type indianScale struct {
	size     int64
	singular string
	plural   string
}

var indianScales = []indianScale{
	{10000000, "Crore", "Crores"},
	{100000, "Lakh", "Lakhs"},
	{1000, "Thousand", "Thousand"},
}

func indianWords(n int64) string {
	var parts []string

	for _, s := range indianScales {
		if n < s.size {
			continue
		}
		count := n / s.size
		n %= s.size
		name := s.plural
		if count == 1 {
			name = s.singular
		}
		// Crores above 99 are spelled recursively (e.g. "One Hundred Crores").
		parts = append(parts, indianWords(count)+" "+name)
	}

	if n >= 100 {
		parts = append(parts, onesWords[n/100]+" Hundred")
		n %= 100
	}

	if n > 0 {
		if len(parts) > 0 {
			parts = append(parts, "and "+wordsUnder100(n))
		} else {
			parts = append(parts, wordsUnder100(n))
		}
	}

	return strings.Join(parts, " ")
}

func wordsUnder100(n int64) string {
	if n < 20 {
		return onesWords[n]
	}
	result := tensWords[n/10]
	if n%10 != 0 {
		result += " " + onesWords[n%10]
	}
	return result
}

var onesWords = []string{
	"", "One", "Two", "Three", "Four", "Five", "Six", "Seven", "Eight", "Nine",
	"Ten", "Eleven", "Twelve", "Thirteen", "Fourteen", "Fifteen", "Sixteen",
	"Seventeen", "Eighteen", "Nineteen",
}

var tensWords = []string{
	"", "", "Twenty", "Thirty", "Forty", "Fifty", "Sixty", "Seventy", "Eighty", "Ninety",
}
