package services

import (
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func qty(v float64) *float64 { return &v }

func TestLineValue(t *testing.T) {
	tests := []struct {
		name string
		item WorkItem
		want string
	}{
		{"rate with tax", WorkItem{BasicRate: 100000, TaxRate: 18}, "118000"},
		{"zero tax", WorkItem{BasicRate: 50000, TaxRate: 0}, "50000"},
		{"zero rate", WorkItem{BasicRate: 0, TaxRate: 18}, "0"},
		{"with quantity", WorkItem{BasicRate: 250, Quantity: qty(4), TaxRate: 12}, "1120"},
		{"zero quantity", WorkItem{BasicRate: 250, Quantity: qty(0), TaxRate: 12}, "0"},
		{"full tax", WorkItem{BasicRate: 10, TaxRate: 100}, "20"},
		{"out of range tax not clamped", WorkItem{BasicRate: 10, TaxRate: 150}, "25"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := LineValue(tt.item)
			assert.True(t, got.Equal(decimal.RequireFromString(tt.want)), "got %s want %s", got, tt.want)
		})
	}
}

func TestLineValue_DoesNotMutate(t *testing.T) {
	item := WorkItem{Key: "a", BasicRate: 100, Quantity: qty(2), TaxRate: 5}
	before := item
	_ = LineValue(item)
	assert.Equal(t, before, item)
}

func TestAggregateTotal(t *testing.T) {
	items := []WorkItem{
		{BasicRate: 100000, TaxRate: 18},
		{BasicRate: 50000, TaxRate: 0},
		{BasicRate: 25000, TaxRate: 12},
	}

	// 118000 + 50000 + 28000
	assert.True(t, AggregateTotal(items).Equal(decimal.NewFromInt(196000)))
	assert.True(t, AggregateTotal(nil).IsZero())
	assert.True(t, AggregateTotal([]WorkItem{}).IsZero())
}

func TestCalcOfferTotals(t *testing.T) {
	items := []WorkItem{
		{BasicRate: 100000, TaxRate: 18},
		{BasicRate: 200, Quantity: qty(5), TaxRate: 5},
	}
	totals := CalcOfferTotals(items)

	assert.True(t, totals.BeforeTax.Equal(decimal.NewFromInt(101000)))
	assert.True(t, totals.Tax.Equal(decimal.NewFromInt(18050)))
	assert.True(t, totals.Total.Equal(AggregateTotal(items)))
}

func TestSuggestedAndMaxEMD(t *testing.T) {
	total := AggregateTotal([]WorkItem{
		{BasicRate: 100000, TaxRate: 18},
		{BasicRate: 50000, TaxRate: 0},
		{BasicRate: 25000, TaxRate: 12},
		{BasicRate: 53000, TaxRate: 0},
	})
	assert.Equal(t, "₹2,49,000", FormatINR(total))

	suggested := SuggestedEMD(total, DefaultEMDPercent)
	assert.True(t, suggested.Equal(decimal.NewFromInt(4980)))
	assert.True(t, MaxEMD(total).Equal(decimal.NewFromInt(12450)))

	assert.True(t, SuggestedEMD(decimal.Zero, DefaultEMDPercent).IsZero())
	assert.True(t, SuggestedEMD(total, 0).IsZero())
}

func TestEMDScenario_ThreeItems(t *testing.T) {
	items := []WorkItem{
		{Key: "a", BasicRate: 100000, TaxRate: 18},
		{Key: "b", BasicRate: 50000, TaxRate: 12},
		{Key: "c", BasicRate: 75000, TaxRate: 0},
	}
	wantLines := []int64{118000, 56000, 75000}

	for i, it := range items {
		assert.Nil(t, it.Quantity)
		got := LineValue(it)
		assert.True(t, got.Equal(decimal.NewFromInt(wantLines[i])), "line %d: got %s", i, got)
	}

	total := AggregateTotal(items)
	assert.True(t, total.Equal(decimal.NewFromInt(249000)), "total %s", total)
	assert.True(t, SuggestedEMD(total, DefaultEMDPercent).Equal(decimal.NewFromInt(4980)))
	assert.True(t, MaxEMD(total).Equal(decimal.NewFromInt(12450)))
}

func TestLineValue_MonotonicInRateAndTax(t *testing.T) {
	rates := []float64{0, 0.01, 1, 99.99, 100, 2500, 100000, 1e7}
	taxes := []float64{0, 0.5, 5, 12, 18, 28, 100}
	quantities := []*float64{nil, qty(0), qty(0.5), qty(3)}

	for _, q := range quantities {
		for _, tax := range taxes {
			prev := decimal.NewFromInt(-1)
			for _, rate := range rates {
				got := LineValue(WorkItem{BasicRate: rate, Quantity: q, TaxRate: tax})
				assert.True(t, got.GreaterThanOrEqual(prev), "rate %v tax %v: %s < %s", rate, tax, got, prev)
				prev = got
			}
		}
		for _, rate := range rates {
			prev := decimal.NewFromInt(-1)
			for _, tax := range taxes {
				got := LineValue(WorkItem{BasicRate: rate, Quantity: q, TaxRate: tax})
				assert.True(t, got.GreaterThanOrEqual(prev), "rate %v tax %v: %s < %s", rate, tax, got, prev)
				prev = got
			}
		}
	}
}

func TestAggregateTotal_OrderInvariant(t *testing.T) {
	items := []WorkItem{
		{Key: "a", BasicRate: 100000, TaxRate: 18},
		{Key: "b", BasicRate: 0.1, Quantity: qty(3), TaxRate: 12},
		{Key: "c", BasicRate: 75000, TaxRate: 0},
		{Key: "d", BasicRate: 333.33, Quantity: qty(7), TaxRate: 5},
		{Key: "e", BasicRate: 12.5, Quantity: qty(0), TaxRate: 28},
	}
	want := AggregateTotal(items)

	rng := rand.New(rand.NewPCG(1, 2))
	for i := 0; i < 50; i++ {
		shuffled := slices.Clone(items)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })
		got := AggregateTotal(shuffled)
		assert.True(t, got.Equal(want), "order %v: got %s want %s", keysOf(shuffled), got, want)
	}

	reversed := slices.Clone(items)
	slices.Reverse(reversed)
	assert.True(t, AggregateTotal(reversed).Equal(want))
}

func TestSuggestedEMD_NeverExceedsMax(t *testing.T) {
	totals := []string{"0", "0.01", "1", "999.99", "249000", "12345678.91", "1000000000"}

	for _, s := range totals {
		total := decimal.RequireFromString(s)
		for _, pct := range []float64{0, 0.5, 1, DefaultEMDPercent, 4.99, 5} {
			suggested := SuggestedEMD(total, pct)
			ceiling := MaxEMD(total)
			assert.True(t, suggested.LessThanOrEqual(ceiling), "total %s pct %v: %s > %s", s, pct, suggested, ceiling)
			assert.True(t, suggested.Round(2).LessThanOrEqual(ceiling.Round(2)), "rounded: total %s pct %v", s, pct)
		}
	}
}

func keysOf(items []WorkItem) []string {
	keys := make([]string, len(items))
	for i, it := range items {
		keys[i] = it.Key
	}
	return keys
}

func TestSummarizeEMD(t *testing.T) {
	s := SummarizeEMD([]WorkItem{{BasicRate: 100000, TaxRate: 0}}, 2)

	assert.True(t, s.Suggested.Equal(decimal.NewFromInt(2000)))
	assert.True(t, s.Max.Equal(decimal.NewFromInt(5000)))
	assert.False(t, s.ExceedsMax(5000))
	assert.True(t, s.ExceedsMax(5000.01))
}
