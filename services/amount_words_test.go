package services

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestAmountToWords_IndianFormat(t *testing.T) {
	tests := []struct {
		name   string
		amount string
		expect string
	}{
		{"zero", "0", "Rupees Zero Only"},
		{"single_digit", "5", "Rupees Five Only"},
		{"teens", "15", "Rupees Fifteen Only"},
		{"hundred_and", "150", "Rupees One Hundred and Fifty Only"},
		{"thousands", "5000", "Rupees Five Thousand Only"},
		{"one_lakh", "100000", "Rupees One Lakh Only"},
		{"lakhs", "913183", "Rupees Nine Lakhs Thirteen Thousand One Hundred and Eighty Three Only"},
		{"crores", "12345678", "Rupees One Crore Twenty Three Lakhs Forty Five Thousand Six Hundred and Seventy Eight Only"},
		{"with_paise", "249000.50", "Rupees Two Lakhs Forty Nine Thousand and Fifty Paise Only"},
		{"paise_only", "0.75", "Rupees Seventy Five Paise Only"},
		{"negative", "-20", "Minus Rupees Twenty Only"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expect, AmountToWords(decimal.RequireFromString(tt.amount)))
		})
	}
}
