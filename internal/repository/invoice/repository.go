package invoice

import (
	"context"
	"time"

	"vatshop/internal/domain"
)

// Repository persists invoices. Invoices are written once by Create and
// never change afterwards.
type Repository interface {
	// NextNumber allocates the next number for invoices issued on asOf. It
	// must run inside the transaction that creates the invoice so concurrent
	// allocations for the same month are serialized.
	NextNumber(ctx context.Context, asOf time.Time) (string, error)
	// Create stores the header and its lines. A duplicate number yields
	// domain.ErrConflict.
	Create(ctx context.Context, inv domain.Invoice) (*domain.Invoice, error)
	GetByNumber(ctx context.Context, number string) (*domain.Invoice, error)
	GetByPaymentIntent(ctx context.Context, intentID string) (*domain.Invoice, error)
	ListByAccount(ctx context.Context, accountID string) ([]domain.Invoice, error)
}
