package domain

import (
	"time"

	"vatshop/internal/pricing"

	"github.com/shopspring/decimal"
)

// DefaultVATRate applies when a product is created without a rate.
const DefaultVATRate = 21

const shortDescriptionLen = 25

// Product is catalog reference data. Price excludes VAT.
type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	VATRate     int             `json:"vatRate"`
	Price       decimal.Decimal `json:"price"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// PriceInclTax returns the unit price with VAT applied.
func (p Product) PriceInclTax() decimal.Decimal {
	return pricing.InclTax(p.Price, p.VATRate)
}

// ShortDescription truncates s to 25 characters followed by "...".
func ShortDescription(s string) string {
	r := []rune(s)
	if len(r) > shortDescriptionLen {
		return string(r[:shortDescriptionLen]) + "..."
	}
	return s
}
