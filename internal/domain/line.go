package domain

import (
	"time"

	"vatshop/internal/pricing"

	"github.com/shopspring/decimal"
)

// LineSnapshot freezes the product fields a line is priced with. It is built
// once and only read afterwards, so catalog edits never reach existing lines.
type LineSnapshot struct {
	name        string
	description string
	vatRate     int
	unitPrice   decimal.Decimal
}

// NewLineSnapshot builds a snapshot from stored values.
func NewLineSnapshot(name, description string, vatRate int, unitPrice decimal.Decimal) LineSnapshot {
	return LineSnapshot{name: name, description: description, vatRate: vatRate, unitPrice: unitPrice}
}

// SnapshotOf captures the current state of p.
func SnapshotOf(p Product) LineSnapshot {
	return NewLineSnapshot(p.Name, p.Description, p.VATRate, p.Price)
}

func (s LineSnapshot) Name() string               { return s.name }
func (s LineSnapshot) Description() string        { return s.description }
func (s LineSnapshot) VATRate() int               { return s.vatRate }
func (s LineSnapshot) UnitPrice() decimal.Decimal { return s.unitPrice }

// LineItem is a cart or invoice line. OwnerID is the cart or invoice id.
// ProductID is nil once the product has been deleted from the catalog.
type LineItem struct {
	ID        string       `json:"id"`
	OwnerID   string       `json:"-"`
	ProductID *string      `json:"productId,omitempty"`
	Snapshot  LineSnapshot `json:"-"`
	Quantity  int          `json:"quantity"`
	CreatedAt time.Time    `json:"createdAt"`
}

// Priced returns the pricing view of the line.
func (l LineItem) Priced() pricing.Line {
	return pricing.Line{
		UnitPrice: l.Snapshot.UnitPrice(),
		VATRate:   l.Snapshot.VATRate(),
		Quantity:  l.Quantity,
	}
}

// Total returns the line total excluding VAT.
func (l LineItem) Total() decimal.Decimal {
	return pricing.LineTotal(l.Priced())
}

// HasProduct reports whether the line references productID.
func (l LineItem) HasProduct(productID string) bool {
	return l.ProductID != nil && *l.ProductID == productID
}

// PricedLines maps lines to their pricing view.
func PricedLines(lines []LineItem) []pricing.Line {
	out := make([]pricing.Line, 0, len(lines))
	for _, l := range lines {
		out = append(out, l.Priced())
	}
	return out
}
