package domain

import (
	"vatshop/internal/pricing"

	"github.com/shopspring/decimal"
)

// BillingLine is the display view of one priced line.
type BillingLine struct {
	ID          string
	ProductID   *string
	Quantity    int
	Name        string
	Description string
	VATRate     int
	UnitPrice   decimal.Decimal
	LineTotal   decimal.Decimal
}

// Billing is the priced summary of a cart or invoice.
type Billing struct {
	Subtotal  decimal.Decimal
	TaxByRate map[int]decimal.Decimal
	Total     decimal.Decimal
	Lines     []BillingLine
}

// Rates returns the VAT rates of b in ascending order.
func (b Billing) Rates() []int {
	return pricing.Breakdown{TaxByRate: b.TaxByRate}.Rates()
}

// BillingOf prices lines. Descriptions are shortened for display.
func BillingOf(lines []LineItem) Billing {
	b := pricing.Compute(PricedLines(lines))
	out := Billing{
		Subtotal:  b.Subtotal,
		TaxByRate: b.TaxByRate,
		Total:     b.Total,
		Lines:     make([]BillingLine, 0, len(lines)),
	}
	for _, l := range lines {
		out.Lines = append(out.Lines, BillingLine{
			ID:          l.ID,
			ProductID:   l.ProductID,
			Quantity:    l.Quantity,
			Name:        l.Snapshot.Name(),
			Description: ShortDescription(l.Snapshot.Description()),
			VATRate:     l.Snapshot.VATRate(),
			UnitPrice:   l.Snapshot.UnitPrice(),
			LineTotal:   l.Total(),
		})
	}
	return out
}
