// Package checkout freezes carts into invoices.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"vatshop/internal/domain"
	"vatshop/internal/logging"
	"vatshop/internal/repository"

	"go.uber.org/zap"
)

// maxAttempts bounds retries after an invoice number collision.
const maxAttempts = 3

type Service struct {
	store  repository.Store
	logger *zap.Logger
	now    func() time.Time
}

func New(store repository.Store, logger *zap.Logger) *Service {
	return &Service{
		store:  store,
		logger: logging.OrNop(logger),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// WithClock overrides the time source used for issue dates and numbering.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Convert turns the active cart cartID into a paid invoice and deactivates
// the cart. Everything happens in one transaction; a number collision with a
// concurrent conversion is retried with a fresh transaction.
func (s *Service) Convert(ctx context.Context, cartID string) (*domain.Invoice, error) {
	for attempt := 1; ; attempt++ {
		inv, err := s.convertOnce(ctx, cartID)
		if err == nil {
			return inv, nil
		}
		if !errors.Is(err, domain.ErrConflict) || attempt >= maxAttempts {
			return nil, err
		}
		s.logger.Warn("invoice number conflict, retrying",
			zap.String("cart_id", cartID),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
	}
}

func (s *Service) convertOnce(ctx context.Context, cartID string) (*domain.Invoice, error) {
	var created *domain.Invoice
	err := s.store.InTx(ctx, func(tx repository.Store) error {
		c, err := tx.Carts().GetForUpdate(ctx, cartID)
		if err != nil {
			return fmt.Errorf("cart %s: %w", cartID, err)
		}
		if !c.IsActive {
			return domain.ErrCartInactive
		}

		issuedOn := s.now()
		number, err := tx.Invoices().NextNumber(ctx, issuedOn)
		if err != nil {
			return fmt.Errorf("allocate invoice number: %w", err)
		}

		created, err = tx.Invoices().Create(ctx, invoiceFromCart(c, number, issuedOn))
		if err != nil {
			return err
		}
		if err := tx.Carts().Deactivate(ctx, c.ID); err != nil {
			return fmt.Errorf("deactivate cart %s: %w", c.ID, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("converted cart to invoice",
		zap.String("cart_id", cartID),
		zap.String("number", created.Number),
		zap.Int("lines", len(created.Lines)),
	)
	return created, nil
}

func invoiceFromCart(c *domain.Cart, number string, issuedOn time.Time) domain.Invoice {
	lines := make([]domain.LineItem, 0, len(c.Lines))
	for _, l := range c.Lines {
		var productID *string
		if l.ProductID != nil {
			id := *l.ProductID
			productID = &id
		}
		lines = append(lines, domain.LineItem{
			ProductID: productID,
			Snapshot:  l.Snapshot,
			Quantity:  l.Quantity,
		})
	}
	return domain.Invoice{
		Number:          number,
		IssuedOn:        issuedOn,
		Status:          domain.InvoiceStatusDone,
		AccountID:       c.AccountID,
		Contact:         c.Contact,
		Address:         c.Address,
		PaymentIntentID: c.PaymentIntentID,
		Lines:           lines,
	}
}

func (s *Service) Get(ctx context.Context, number string) (*domain.Invoice, error) {
	return s.store.Invoices().GetByNumber(ctx, number)
}

// GetForAccount returns the invoice only when accountID owns it.
func (s *Service) GetForAccount(ctx context.Context, number, accountID string) (*domain.Invoice, error) {
	inv, err := s.Get(ctx, number)
	if err != nil {
		return nil, err
	}
	if !inv.OwnedBy(accountID) {
		return nil, domain.ErrNotFound
	}
	return inv, nil
}

func (s *Service) ListForAccount(ctx context.Context, accountID string) ([]domain.Invoice, error) {
	return s.store.Invoices().ListByAccount(ctx, accountID)
}

// Billing prices the frozen invoice lines with the same rules as carts.
func (s *Service) Billing(inv *domain.Invoice) domain.Billing {
	return domain.BillingOf(inv.Lines)
}
