package domain

import "time"

// InvoiceStatus is the payment state of an invoice.
type InvoiceStatus string

const (
	InvoiceStatusWaiting InvoiceStatus = "waiting"
	InvoiceStatusDone    InvoiceStatus = "done"
)

// Invoice is the frozen copy of a paid cart. It is never modified after
// creation.
type Invoice struct {
	ID              string        `json:"id"`
	Number          string        `json:"number"`
	IssuedOn        time.Time     `json:"issuedOn"`
	Status          InvoiceStatus `json:"status"`
	AccountID       *string       `json:"accountId,omitempty"`
	Contact         Contact       `json:"contact"`
	Address         Address       `json:"address"`
	PaymentIntentID *string       `json:"paymentIntentId,omitempty"`
	Lines           []LineItem    `json:"lines,omitempty"`
	CreatedAt       time.Time     `json:"createdAt"`
}

// OwnedBy reports whether the invoice belongs to accountID.
func (i *Invoice) OwnedBy(accountID string) bool {
	return i.AccountID != nil && *i.AccountID == accountID
}
