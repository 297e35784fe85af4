package cart

import (
	"context"

	"vatshop/internal/domain"
)

type CreateCartInput struct {
	AccountID *string
}

// Repository persists carts and their lines. Lines are always returned with
// the cart that owns them.
type Repository interface {
	Create(ctx context.Context, in CreateCartInput) (*domain.Cart, error)
	GetByID(ctx context.Context, id string) (*domain.Cart, error)
	// GetForUpdate loads the cart and locks it until the surrounding transaction ends.
	GetForUpdate(ctx context.Context, id string) (*domain.Cart, error)
	GetActiveByAccount(ctx context.Context, accountID string) (*domain.Cart, error)
	// GetOrCreateActiveByAccount never yields two active carts for one account.
	GetOrCreateActiveByAccount(ctx context.Context, accountID string) (*domain.Cart, error)
	GetByPaymentIntent(ctx context.Context, intentID string) (*domain.Cart, error)

	AddLine(ctx context.Context, cartID string, productID *string, snapshot domain.LineSnapshot, quantity int) (*domain.LineItem, error)
	UpdateLine(ctx context.Context, lineID string, snapshot domain.LineSnapshot, quantity int) error
	SetLineQuantity(ctx context.Context, lineID string, quantity int) error
	DeleteLine(ctx context.Context, lineID string) error

	UpdateDetails(ctx context.Context, cartID string, contact domain.Contact, address domain.Address) error
	SetPaymentIntent(ctx context.Context, cartID, intentID string) error
	Deactivate(ctx context.Context, cartID string) error
}
