// Package cart manages the lifecycle of shopping carts: resolving the cart
// of a request, merging anonymous carts into account carts, quantity
// changes and checkout details.
package cart

import (
	"context"
	"errors"
	"fmt"

	"vatshop/internal/domain"
	"vatshop/internal/logging"
	"vatshop/internal/repository"
	cartrepo "vatshop/internal/repository/cart"
	"vatshop/internal/validation"

	"go.uber.org/zap"
)

// MinKeptQuantity is the smallest quantity a line keeps after SetQuantity.
// Any resulting quantity at or below 1 removes the line.
const MinKeptQuantity = 2

type Service struct {
	store  repository.Store
	logger *zap.Logger
}

func New(store repository.Store, logger *zap.Logger) *Service {
	return &Service{store: store, logger: logging.OrNop(logger)}
}

// CheckoutInput carries the contact and billing address entered at checkout.
type CheckoutInput struct {
	FirstName string `json:"firstName" validate:"required,max=255"`
	LastName  string `json:"lastName" validate:"required,max=255"`
	Email     string `json:"email" validate:"required,email,max=254"`
	Phone     string `json:"phone" validate:"omitempty,max=255"`
	Street    string `json:"street" validate:"required,max=255"`
	Zipcode   string `json:"zipcode" validate:"required,max=5"`
	City      string `json:"city" validate:"required,max=255"`
}

// Resolve returns the cart the request works on and points sess at it.
//
// Anonymous visitors get the active cart stored in their session, or a new
// one. Authenticated visitors get their account cart; a different active
// session cart is merged into it and deactivated.
func (s *Service) Resolve(ctx context.Context, sess *domain.Session, accountID *string) (*domain.Cart, error) {
	var resolved *domain.Cart
	err := s.store.InTx(ctx, func(tx repository.Store) error {
		carts := tx.Carts()

		sessionCart, err := s.activeSessionCart(ctx, carts, sess)
		if err != nil {
			return err
		}

		if accountID == nil {
			if sessionCart == nil {
				sessionCart, err = carts.Create(ctx, cartrepo.CreateCartInput{})
				if err != nil {
					return fmt.Errorf("create anonymous cart: %w", err)
				}
				s.logger.Debug("created anonymous cart", zap.String("cart_id", sessionCart.ID))
			}
			resolved = sessionCart
			return nil
		}

		accountCart, err := carts.GetOrCreateActiveByAccount(ctx, *accountID)
		if err != nil {
			return fmt.Errorf("account cart: %w", err)
		}
		// Re-read under a row lock: merge writes absolute quantities.
		if accountCart, err = carts.GetForUpdate(ctx, accountCart.ID); err != nil {
			return fmt.Errorf("lock account cart: %w", err)
		}
		if sessionCart != nil && sessionCart.ID != accountCart.ID && mergeable(sessionCart, *accountID) {
			if accountCart, err = s.merge(ctx, carts, sessionCart, accountCart); err != nil {
				return err
			}
		}
		resolved = accountCart
		return nil
	})
	if err != nil {
		return nil, err
	}
	sess.SetCartID(resolved.ID)
	return resolved, nil
}

func (s *Service) activeSessionCart(ctx context.Context, carts cartrepo.Repository, sess *domain.Session) (*domain.Cart, error) {
	id, ok := sess.CurrentCartID()
	if !ok {
		return nil, nil
	}
	c, err := carts.GetForUpdate(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("session cart: %w", err)
	}
	if !c.IsActive {
		return nil, nil
	}
	return c, nil
}

// mergeable reports whether an active session cart may be folded into the
// cart of accountID. Carts owned by another account are left alone.
func mergeable(sessionCart *domain.Cart, accountID string) bool {
	return sessionCart.IsActive && (sessionCart.AccountID == nil || sessionCart.OwnedBy(accountID))
}

func (s *Service) merge(ctx context.Context, carts cartrepo.Repository, from, into *domain.Cart) (*domain.Cart, error) {
	for _, line := range from.Lines {
		if line.ProductID != nil {
			if existing := into.LineForProduct(*line.ProductID); existing != nil {
				existing.Quantity += line.Quantity
				if err := carts.SetLineQuantity(ctx, existing.ID, existing.Quantity); err != nil {
					return nil, fmt.Errorf("merge line %s: %w", line.ID, err)
				}
				continue
			}
		}
		added, err := carts.AddLine(ctx, into.ID, line.ProductID, line.Snapshot, line.Quantity)
		if err != nil {
			return nil, fmt.Errorf("copy line %s: %w", line.ID, err)
		}
		into.Lines = append(into.Lines, *added)
	}
	if err := carts.Deactivate(ctx, from.ID); err != nil {
		return nil, fmt.Errorf("deactivate merged cart: %w", err)
	}
	s.logger.Info("merged session cart",
		zap.String("from_cart_id", from.ID),
		zap.String("into_cart_id", into.ID),
		zap.Int("lines", len(from.Lines)),
	)
	return carts.GetByID(ctx, into.ID)
}

// SetQuantity sets (replace) or increments the quantity of productID in c
// and returns the billing of the updated cart. The line snapshot is
// refreshed from the current product. A resulting quantity of 1 or less
// leaves no line for the product.
func (s *Service) SetQuantity(ctx context.Context, c *domain.Cart, productID string, quantity int, replace bool) (*domain.Billing, error) {
	if quantity < 0 {
		return nil, domain.NewValidationError("quantity", "must not be negative")
	}
	if quantity == 0 && !replace {
		return nil, domain.NewValidationError("quantity", "must be positive when adding")
	}

	var updated *domain.Cart
	err := s.store.InTx(ctx, func(tx repository.Store) error {
		product, err := tx.Products().GetByID(ctx, productID)
		if err != nil {
			return fmt.Errorf("product %s: %w", productID, err)
		}
		carts := tx.Carts()
		current, err := carts.GetForUpdate(ctx, c.ID)
		if err != nil {
			return fmt.Errorf("cart %s: %w", c.ID, err)
		}
		if !current.IsActive {
			return domain.ErrCartInactive
		}

		line := current.LineForProduct(productID)
		next := quantity
		if line != nil && !replace {
			next = line.Quantity + quantity
		}

		switch {
		case line != nil && next < MinKeptQuantity:
			err = carts.DeleteLine(ctx, line.ID)
		case line != nil:
			err = carts.UpdateLine(ctx, line.ID, domain.SnapshotOf(*product), next)
		case next >= MinKeptQuantity:
			_, err = carts.AddLine(ctx, current.ID, &product.ID, domain.SnapshotOf(*product), next)
		}
		if err != nil {
			return fmt.Errorf("set quantity of %s: %w", productID, err)
		}

		updated, err = carts.GetByID(ctx, current.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	*c = *updated
	b := s.Billing(c)
	return &b, nil
}

// Billing prices the cart. It is recomputed on every call.
func (s *Service) Billing(c *domain.Cart) domain.Billing {
	return domain.BillingOf(c.Lines)
}

// ItemCount is the sum of line quantities.
func (s *Service) ItemCount(c *domain.Cart) int {
	return c.ItemCount()
}

// UpdateCheckout validates and stores the contact and billing address of c.
func (s *Service) UpdateCheckout(ctx context.Context, c *domain.Cart, in CheckoutInput) (*domain.Cart, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	if !c.IsActive {
		return nil, domain.ErrCartInactive
	}
	contact := domain.Contact{FirstName: in.FirstName, LastName: in.LastName, Email: in.Email, Phone: in.Phone}
	address := domain.Address{Street: in.Street, Zipcode: in.Zipcode, City: in.City}
	if err := s.store.Carts().UpdateDetails(ctx, c.ID, contact, address); err != nil {
		return nil, fmt.Errorf("update checkout details: %w", err)
	}
	c.Contact = contact
	c.Address = address
	return c, nil
}
