package seed

import (
	"context"
	"fmt"

	"vatshop/internal/domain"

	"github.com/shopspring/decimal"
)

// ProductWriter is the catalog write side used by the seed.
type ProductWriter interface {
	Upsert(ctx context.Context, product domain.Product) (*domain.Product, error)
}

type productSeed struct {
	Name        string
	Description string
	VATRate     int
	Price       string
}

var demoProducts = []productSeed{
	{Name: "Espresso Beans 1kg", Description: "Dark roast blend for espresso machines", VATRate: 6, Price: "18.50"},
	{Name: "Ceramic Mug", Description: "Stoneware mug, 350 ml, dishwasher safe", VATRate: 21, Price: "9.95"},
	{Name: "Hand Grinder", Description: "Conical burr grinder with adjustable coarseness", VATRate: 21, Price: "42.00"},
	{Name: "Paper Filters", Description: "Pack of 100 unbleached filters", VATRate: 21, Price: "4.25"},
	{Name: "Cookbook: Brewing at Home", Description: "Recipes and techniques for home baristas", VATRate: 6, Price: "24.90"},
}

// Apply upserts the demo catalog. It is idempotent: products are matched by name.
func Apply(ctx context.Context, products ProductWriter) (int, error) {
	for i, p := range demoProducts {
		price, err := decimal.NewFromString(p.Price)
		if err != nil {
			return i, fmt.Errorf("price of %q: %w", p.Name, err)
		}
		if _, err := products.Upsert(ctx, domain.Product{
			Name:        p.Name,
			Description: p.Description,
			VATRate:     p.VATRate,
			Price:       price,
		}); err != nil {
			return i, fmt.Errorf("upsert product %q: %w", p.Name, err)
		}
	}
	return len(demoProducts), nil
}
