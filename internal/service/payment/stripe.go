package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"vatshop/internal/domain"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/webhook"
)

// StripeGateway talks to Stripe payment intents and verifies Stripe webhooks.
type StripeGateway struct {
	api           *client.API
	webhookSecret string
}

var _ Gateway = (*StripeGateway)(nil)

func NewStripeGateway(secretKey, webhookSecret string) *StripeGateway {
	api := &client.API{}
	api.Init(secretKey, nil)
	return &StripeGateway{api: api, webhookSecret: webhookSecret}
}

func (g *StripeGateway) CreateIntent(ctx context.Context, amount int64, currency string) (*Intent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amount),
		Currency: stripe.String(currency),
	}
	params.Context = ctx
	pi, err := g.api.PaymentIntents.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe: create payment intent: %w", err)
	}
	return intentFrom(pi), nil
}

func (g *StripeGateway) UpdateIntent(ctx context.Context, id string, amount int64, currency string) (*Intent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amount),
		Currency: stripe.String(currency),
	}
	params.Context = ctx
	pi, err := g.api.PaymentIntents.Update(id, params)
	if err != nil {
		return nil, fmt.Errorf("stripe: update payment intent %s: %w", id, err)
	}
	return intentFrom(pi), nil
}

func (g *StripeGateway) ParseEvent(payload []byte, signature string) (*Event, error) {
	return parseStripeEvent(payload, signature, g.webhookSecret)
}

func parseStripeEvent(payload []byte, signature, secret string) (*Event, error) {
	ev, err := webhook.ConstructEventWithOptions(payload, signature, secret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		if isSignatureError(err) {
			return nil, fmt.Errorf("%w: %v", domain.ErrSignature, err)
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedEvent, err)
	}

	out := &Event{ID: ev.ID, Type: string(ev.Type)}
	if out.Type != EventChargeSucceeded {
		return out, nil
	}
	if ev.Data == nil || len(ev.Data.Raw) == 0 {
		return nil, fmt.Errorf("%w: event %s has no data", domain.ErrMalformedEvent, ev.ID)
	}
	var charge struct {
		PaymentIntent string `json:"payment_intent"`
	}
	if err := json.Unmarshal(ev.Data.Raw, &charge); err != nil {
		return nil, fmt.Errorf("%w: decode charge: %v", domain.ErrMalformedEvent, err)
	}
	if charge.PaymentIntent == "" {
		return nil, fmt.Errorf("%w: charge in event %s has no payment intent", domain.ErrMalformedEvent, ev.ID)
	}
	out.PaymentIntentID = charge.PaymentIntent
	return out, nil
}

func isSignatureError(err error) bool {
	return errors.Is(err, webhook.ErrNotSigned) ||
		errors.Is(err, webhook.ErrInvalidHeader) ||
		errors.Is(err, webhook.ErrNoValidSignature) ||
		errors.Is(err, webhook.ErrTooOld)
}

func intentFrom(pi *stripe.PaymentIntent) *Intent {
	return &Intent{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
		Amount:       pi.Amount,
		Currency:     string(pi.Currency),
	}
}
