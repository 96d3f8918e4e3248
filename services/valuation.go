// Package services holds the offer domain: work item valuation, EMD
// derivation, the offer form controller, record stores and exports.
package services

import (
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// WorkItem is one priced line of an offer.
// Quantity is optional; when nil the line is priced per rate only.
type WorkItem struct {
	Key         string   `json:"key"`
	Description string   `json:"description" validate:"required,max=500"`
	BasicRate   float64  `json:"basic_rate" validate:"gte=0"`
	Unit        string   `json:"unit" validate:"max=20"`
	Quantity    *float64 `json:"quantity,omitempty" validate:"omitempty,gte=0"`
	TaxRate     float64  `json:"tax_rate" validate:"gte=0,lte=100"`
}

// LineBreakup holds the calculated values for a single work item.
type LineBreakup struct {
	BeforeTax decimal.Decimal // rate, times quantity when present
	TaxAmount decimal.Decimal
	Total     decimal.Decimal
}

// CalcLine returns the before-tax, tax and total values of one work item.
// Tax rates are used as given; range checks belong to validation.
func CalcLine(item WorkItem) LineBreakup {
	beforeTax := decimal.NewFromFloat(item.BasicRate)
	if item.Quantity != nil {
		beforeTax = beforeTax.Mul(decimal.NewFromFloat(*item.Quantity))
	}
	tax := beforeTax.Mul(decimal.NewFromFloat(item.TaxRate)).Div(hundred)
	return LineBreakup{
		BeforeTax: beforeTax,
		TaxAmount: tax,
		Total:     beforeTax.Add(tax),
	}
}

// LineValue returns basicRate × (1 + taxRate/100), multiplied by the
// quantity when one is set.
func LineValue(item WorkItem) decimal.Decimal {
	return CalcLine(item).Total
}

// AggregateTotal sums the line values of items. An empty list totals zero.
func AggregateTotal(items []WorkItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(LineValue(item))
	}
	return total
}

// OfferTotals summarises an offer's work items.
type OfferTotals struct {
	BeforeTax decimal.Decimal
	Tax       decimal.Decimal
	Total     decimal.Decimal
}

// CalcOfferTotals computes the before-tax, tax and grand totals of items.
func CalcOfferTotals(items []WorkItem) OfferTotals {
	totals := OfferTotals{BeforeTax: decimal.Zero, Tax: decimal.Zero, Total: decimal.Zero}
	for _, item := range items {
		line := CalcLine(item)
		totals.BeforeTax = totals.BeforeTax.Add(line.BeforeTax)
		totals.Tax = totals.Tax.Add(line.TaxAmount)
		totals.Total = totals.Total.Add(line.Total)
	}
	return totals
}
