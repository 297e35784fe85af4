package httpserver

import (
	"time"

	"vatshop/internal/domain"

	"github.com/shopspring/decimal"
)

type productResponse struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	VATRate      int    `json:"vatRate"`
	Price        string `json:"price"`
	PriceInclTax string `json:"priceInclTax"`
}

type productDetailResponse struct {
	productResponse
	Related []productResponse `json:"related"`
}

type taxResponse struct {
	Rate   int    `json:"rate"`
	Amount string `json:"amount"`
}

type billingLineResponse struct {
	ID          string  `json:"id"`
	ProductID   *string `json:"productId"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Quantity    int     `json:"quantity"`
	VATRate     int     `json:"vatRate"`
	UnitPrice   string  `json:"unitPrice"`
	LineTotal   string  `json:"lineTotal"`
}

type billingResponse struct {
	Lines    []billingLineResponse `json:"lines"`
	Subtotal string                `json:"subtotal"`
	Taxes    []taxResponse         `json:"taxes"`
	Total    string                `json:"total"`
}

type cartResponse struct {
	ID        string         `json:"id"`
	ItemCount int            `json:"itemCount"`
	Contact   domain.Contact `json:"contact"`
	Address   domain.Address `json:"address"`
	billingResponse
}

type invoiceResponse struct {
	Number   string         `json:"number"`
	IssuedOn string         `json:"issuedOn"`
	Status   string         `json:"status"`
	Contact  domain.Contact `json:"contact"`
	Address  domain.Address `json:"address"`
	billingResponse
}

type invoiceSummaryResponse struct {
	Number   string `json:"number"`
	IssuedOn string `json:"issuedOn"`
	Status   string `json:"status"`
	Total    string `json:"total"`
}

type accountResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"firstName,omitempty"`
	LastName  string    `json:"lastName,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

type tokenResponse struct {
	AccessToken string          `json:"access_token"`
	TokenType   string          `json:"token_type"`
	ExpiresIn   int             `json:"expires_in"`
	Account     accountResponse `json:"account"`
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func toProductResponse(p domain.Product) productResponse {
	return productResponse{
		ID:           p.ID,
		Name:         p.Name,
		Description:  p.Description,
		VATRate:      p.VATRate,
		Price:        money(p.Price),
		PriceInclTax: money(p.PriceInclTax()),
	}
}

func toProductResponses(products []domain.Product) []productResponse {
	out := make([]productResponse, 0, len(products))
	for _, p := range products {
		out = append(out, toProductResponse(p))
	}
	return out
}

func toBillingResponse(b domain.Billing) billingResponse {
	rates := b.Rates()
	taxes := make([]taxResponse, 0, len(rates))
	for _, rate := range rates {
		taxes = append(taxes, taxResponse{Rate: rate, Amount: money(b.TaxByRate[rate])})
	}

	lines := make([]billingLineResponse, 0, len(b.Lines))
	for _, l := range b.Lines {
		lines = append(lines, billingLineResponse{
			ID:          l.ID,
			ProductID:   l.ProductID,
			Name:        l.Name,
			Description: l.Description,
			Quantity:    l.Quantity,
			VATRate:     l.VATRate,
			UnitPrice:   money(l.UnitPrice),
			LineTotal:   money(l.LineTotal),
		})
	}
	return billingResponse{
		Lines:    lines,
		Subtotal: money(b.Subtotal),
		Taxes:    taxes,
		Total:    money(b.Total),
	}
}

func toInvoiceResponse(inv *domain.Invoice, b domain.Billing) invoiceResponse {
	return invoiceResponse{
		Number:          inv.Number,
		IssuedOn:        inv.IssuedOn.Format(time.DateOnly),
		Status:          string(inv.Status),
		Contact:         inv.Contact,
		Address:         inv.Address,
		billingResponse: toBillingResponse(b),
	}
}

func toAccountResponse(a *domain.Account) accountResponse {
	return accountResponse{
		ID:        a.ID,
		Email:     a.Email,
		FirstName: a.FirstName,
		LastName:  a.LastName,
		CreatedAt: a.CreatedAt,
	}
}
