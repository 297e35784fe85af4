package domain

import "time"

// Contact holds the buyer's contact details.
type Contact struct {
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
}

// Address is the billing address.
type Address struct {
	Street  string `json:"street,omitempty"`
	Zipcode string `json:"zipcode,omitempty"`
	City    string `json:"city,omitempty"`
}

// Cart is a session- or account-scoped basket. AccountID is nil for
// anonymous carts. At most one active cart exists per account.
type Cart struct {
	ID              string     `json:"id"`
	AccountID       *string    `json:"accountId,omitempty"`
	Contact         Contact    `json:"contact"`
	Address         Address    `json:"address"`
	PaymentIntentID *string    `json:"-"`
	IsActive        bool       `json:"isActive"`
	Lines           []LineItem `json:"lines,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
}

// LineForProduct returns the line holding productID, or nil.
func (c *Cart) LineForProduct(productID string) *LineItem {
	for i := range c.Lines {
		if c.Lines[i].HasProduct(productID) {
			return &c.Lines[i]
		}
	}
	return nil
}

// ItemCount sums all line quantities.
func (c *Cart) ItemCount() int {
	n := 0
	for _, l := range c.Lines {
		n += l.Quantity
	}
	return n
}

// IsEmpty reports whether the cart holds no items.
func (c *Cart) IsEmpty() bool {
	return c.ItemCount() == 0
}

// OwnedBy reports whether the cart belongs to accountID.
func (c *Cart) OwnedBy(accountID string) bool {
	return c.AccountID != nil && *c.AccountID == accountID
}
