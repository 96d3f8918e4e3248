package services

import (
	"github.com/shopspring/decimal"
)

// DefaultEMDPercent is the share of the offer total suggested as earnest
// money deposit when no other percentage is configured.
const DefaultEMDPercent = 2.0

// emdCeilingPercent is the advisory upper bound shown next to the EMD amount.
var emdCeilingPercent = decimal.NewFromInt(5)

// SuggestedEMD returns total × percentage / 100.
func SuggestedEMD(total decimal.Decimal, percentage float64) decimal.Decimal {
	return total.Mul(decimal.NewFromFloat(percentage)).Div(hundred)
}

// MaxEMD returns the advisory maximum EMD for total (5%). It is shown as a
// hint and never enforced.
func MaxEMD(total decimal.Decimal) decimal.Decimal {
	return total.Mul(emdCeilingPercent).Div(hundred)
}

// EMDSummary is what the EMD step displays next to the amount input.
type EMDSummary struct {
	Total     decimal.Decimal
	Suggested decimal.Decimal
	Max       decimal.Decimal
	Percent   float64
}

// SummarizeEMD derives the suggested and maximum EMD for items.
func SummarizeEMD(items []WorkItem, percentage float64) EMDSummary {
	total := AggregateTotal(items)
	return EMDSummary{
		Total:     total,
		Suggested: SuggestedEMD(total, percentage),
		Max:       MaxEMD(total),
		Percent:   percentage,
	}
}

// ExceedsMax reports whether amount is above the advisory maximum.
func (s EMDSummary) ExceedsMax(amount float64) bool {
	return decimal.NewFromFloat(amount).GreaterThan(s.Max)
}
