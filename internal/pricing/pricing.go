// Package pricing computes line totals and multi-rate VAT aggregates.
//
// Amounts are rounded to two places with banker's rounding (half to even) at
// every aggregation step: each line total, the subtotal, each per-rate tax and
// the sum of taxes. Cart and invoice totals both go through Compute so the two
// always agree.
package pricing

import (
	"sort"

	"github.com/shopspring/decimal"
)

const places = 2

var hundred = decimal.NewFromInt(100)

// Line is the priced shape shared by cart and invoice lines.
type Line struct {
	UnitPrice decimal.Decimal
	VATRate   int
	Quantity  int
}

// Breakdown is the result of pricing a set of lines.
type Breakdown struct {
	Subtotal  decimal.Decimal
	TaxByRate map[int]decimal.Decimal
	Total     decimal.Decimal
}

// LineTotal returns round(quantity × unit price, 2).
func LineTotal(l Line) decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity))).RoundBank(places)
}

// Compute prices lines grouped by VAT rate. It never returns a nil map.
func Compute(lines []Line) Breakdown {
	baseByRate := make(map[int]decimal.Decimal)
	subtotal := decimal.Zero
	for _, l := range lines {
		total := LineTotal(l)
		baseByRate[l.VATRate] = baseByRate[l.VATRate].Add(total)
		subtotal = subtotal.Add(total)
	}
	subtotal = subtotal.RoundBank(places)

	b := Breakdown{
		Subtotal:  subtotal,
		TaxByRate: make(map[int]decimal.Decimal, len(baseByRate)),
	}
	for rate, base := range baseByRate {
		b.TaxByRate[rate] = Tax(base, rate)
	}
	b.Total = subtotal.Add(b.TaxTotal().RoundBank(places))
	return b
}

// Tax returns round(base × rate / 100, 2).
func Tax(base decimal.Decimal, rate int) decimal.Decimal {
	return base.Mul(decimal.NewFromInt(int64(rate))).Div(hundred).RoundBank(places)
}

// InclTax returns round(price × (1 + rate/100), 2).
func InclTax(price decimal.Decimal, rate int) decimal.Decimal {
	return price.Mul(decimal.NewFromInt(int64(100 + rate))).Div(hundred).RoundBank(places)
}

// MinorUnits converts an amount to integer cents, truncating any remainder.
func MinorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(hundred).IntPart()
}

// Rates returns the VAT rates of b in ascending order.
func (b Breakdown) Rates() []int {
	rates := make([]int, 0, len(b.TaxByRate))
	for rate := range b.TaxByRate {
		rates = append(rates, rate)
	}
	sort.Ints(rates)
	return rates
}

// TaxTotal is the sum of all per-rate taxes.
func (b Breakdown) TaxTotal() decimal.Decimal {
	sum := decimal.Zero
	for _, tax := range b.TaxByRate {
		sum = sum.Add(tax)
	}
	return sum
}
