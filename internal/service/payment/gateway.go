package payment

import "context"

// EventChargeSucceeded is the only event type the shop acts on.
const EventChargeSucceeded = "charge.succeeded"

// Intent is a payment intent as seen by the shop.
type Intent struct {
	ID           string
	ClientSecret string
	Amount       int64
	Currency     string
}

// Event is a verified webhook event. PaymentIntentID is set for charge events.
type Event struct {
	ID              string
	Type            string
	PaymentIntentID string
}

// Gateway is the payment processor. Amounts are in minor units.
type Gateway interface {
	CreateIntent(ctx context.Context, amount int64, currency string) (*Intent, error)
	UpdateIntent(ctx context.Context, id string, amount int64, currency string) (*Intent, error)
	// ParseEvent verifies the signature header against payload. It fails with
	// domain.ErrSignature or domain.ErrMalformedEvent.
	ParseEvent(payload []byte, signature string) (*Event, error)
}
