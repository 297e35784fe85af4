// Package payment prepares payment intents for carts and turns verified
// payment events into invoices.
package payment

import (
	"context"
	"errors"
	"fmt"

	"vatshop/internal/domain"
	"vatshop/internal/logging"
	"vatshop/internal/pricing"

	"go.uber.org/zap"
)

// DefaultCurrency is used when no currency is configured.
const DefaultCurrency = "eur"

type cartRepo interface {
	GetByPaymentIntent(ctx context.Context, intentID string) (*domain.Cart, error)
	SetPaymentIntent(ctx context.Context, cartID, intentID string) error
}

type invoiceRepo interface {
	GetByPaymentIntent(ctx context.Context, intentID string) (*domain.Invoice, error)
}

type converter interface {
	Convert(ctx context.Context, cartID string) (*domain.Invoice, error)
}

type Service struct {
	carts     cartRepo
	invoices  invoiceRepo
	gateway   Gateway
	converter converter
	currency  string
	logger    *zap.Logger
}

func New(carts cartRepo, invoices invoiceRepo, gateway Gateway, converter converter, currency string, logger *zap.Logger) *Service {
	if currency == "" {
		currency = DefaultCurrency
	}
	return &Service{
		carts:     carts,
		invoices:  invoices,
		gateway:   gateway,
		converter: converter,
		currency:  currency,
		logger:    logging.OrNop(logger),
	}
}

// PrepareIntent creates or refreshes the payment intent of c for its
// current total. Gateway failures surface as domain.ErrPaymentGateway and
// leave the cart untouched.
func (s *Service) PrepareIntent(ctx context.Context, c *domain.Cart) (*Intent, error) {
	if !c.IsActive {
		return nil, domain.ErrCartInactive
	}
	if c.IsEmpty() {
		return nil, domain.NewValidationError("cart", "is empty")
	}
	amount := pricing.MinorUnits(domain.BillingOf(c.Lines).Total)

	var (
		intent *Intent
		err    error
	)
	if c.PaymentIntentID != nil && *c.PaymentIntentID != "" {
		intent, err = s.gateway.UpdateIntent(ctx, *c.PaymentIntentID, amount, s.currency)
	} else {
		intent, err = s.gateway.CreateIntent(ctx, amount, s.currency)
	}
	if err != nil {
		s.logger.Error("payment gateway call failed",
			zap.String("cart_id", c.ID),
			zap.Int64("amount", amount),
			zap.Error(err),
		)
		return nil, domain.ErrPaymentGateway
	}

	if c.PaymentIntentID == nil || *c.PaymentIntentID != intent.ID {
		if err := s.carts.SetPaymentIntent(ctx, c.ID, intent.ID); err != nil {
			return nil, fmt.Errorf("store payment intent: %w", err)
		}
		id := intent.ID
		c.PaymentIntentID = &id
	}
	s.logger.Debug("prepared payment intent", zap.String("cart_id", c.ID), zap.String("intent_id", intent.ID), zap.Int64("amount", amount))
	return intent, nil
}

// HandleWebhook verifies and applies a payment event. Replays for carts that
// were already converted and events of other types are no-ops.
func (s *Service) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	ev, err := s.gateway.ParseEvent(payload, signature)
	if err != nil {
		s.logger.Warn("rejected payment event", zap.Error(err))
		return err
	}
	if ev.Type != EventChargeSucceeded {
		s.logger.Debug("ignored payment event", zap.String("event_id", ev.ID), zap.String("type", ev.Type))
		return nil
	}

	c, err := s.carts.GetByPaymentIntent(ctx, ev.PaymentIntentID)
	if err != nil {
		return fmt.Errorf("cart for payment intent %s: %w", ev.PaymentIntentID, err)
	}
	if !c.IsActive {
		return s.replayed(ctx, ev, c)
	}

	inv, err := s.converter.Convert(ctx, c.ID)
	if errors.Is(err, domain.ErrCartInactive) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("convert cart %s: %w", c.ID, err)
	}
	s.logger.Info("payment captured", zap.String("event_id", ev.ID), zap.String("invoice", inv.Number))
	return nil
}

// replayed handles an event for a cart that is no longer active. A cart
// deactivated without an invoice for the intent was merged or abandoned
// after payment, which needs manual follow-up.
func (s *Service) replayed(ctx context.Context, ev *Event, c *domain.Cart) error {
	inv, err := s.invoices.GetByPaymentIntent(ctx, ev.PaymentIntentID)
	if errors.Is(err, domain.ErrNotFound) {
		s.logger.Error("payment captured for inactive cart without invoice",
			zap.String("event_id", ev.ID),
			zap.String("cart_id", c.ID),
			zap.String("intent_id", ev.PaymentIntentID),
		)
		return nil
	}
	if err != nil {
		return fmt.Errorf("invoice for payment intent %s: %w", ev.PaymentIntentID, err)
	}
	s.logger.Info("payment event replayed for converted cart",
		zap.String("event_id", ev.ID),
		zap.String("cart_id", c.ID),
		zap.String("invoice", inv.Number),
	)
	return nil
}
