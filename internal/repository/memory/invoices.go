package memory

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"time"

	"vatshop/internal/domain"
	"vatshop/internal/repository/invoice"

	"github.com/google/uuid"
)

type invoiceRepo struct {
	sh *shared
	tx bool
}

func (r *invoiceRepo) NextNumber(ctx context.Context, asOf time.Time) (string, error) {
	st := r.sh.st
	defer r.sh.rlock(r.tx)()

	numbers := make([]string, 0, len(st.invoices))
	for _, inv := range st.invoices {
		numbers = append(numbers, inv.Number)
	}
	return invoice.NextFrom(numbers, asOf), nil
}

func (r *invoiceRepo) Create(ctx context.Context, inv domain.Invoice) (*domain.Invoice, error) {
	st := r.sh.st
	defer r.sh.lock(r.tx)()

	for _, existing := range st.invoices {
		if existing.Number == inv.Number {
			return nil, fmt.Errorf("invoice number %s taken: %w", inv.Number, domain.ErrConflict)
		}
		if inv.PaymentIntentID != nil && existing.PaymentIntentID != nil && *existing.PaymentIntentID == *inv.PaymentIntentID {
			return nil, domain.ErrAlreadyExists
		}
	}

	now := r.sh.now()
	inv.ID = uuid.NewString()
	inv.CreatedAt = now
	y, m, d := inv.IssuedOn.Date()
	inv.IssuedOn = time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	lines := make([]domain.LineItem, len(inv.Lines))
	for i, l := range inv.Lines {
		l.ID = uuid.NewString()
		l.OwnerID = inv.ID
		l.CreatedAt = now
		if l.ProductID != nil {
			id := *l.ProductID
			l.ProductID = &id
		}
		lines[i] = l
	}
	inv.Lines = lines
	st.invoices[inv.ID] = inv

	out := inv
	out.Lines = slices.Clone(lines)
	return &out, nil
}

func (r *invoiceRepo) find(match func(domain.Invoice) bool) (*domain.Invoice, error) {
	st := r.sh.st
	defer r.sh.rlock(r.tx)()

	for _, inv := range st.invoices {
		if match(inv) {
			inv.Lines = slices.Clone(inv.Lines)
			return &inv, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *invoiceRepo) GetByNumber(ctx context.Context, number string) (*domain.Invoice, error) {
	return r.find(func(inv domain.Invoice) bool { return inv.Number == number })
}

func (r *invoiceRepo) GetByPaymentIntent(ctx context.Context, intentID string) (*domain.Invoice, error) {
	return r.find(func(inv domain.Invoice) bool {
		return inv.PaymentIntentID != nil && *inv.PaymentIntentID == intentID
	})
}

func (r *invoiceRepo) ListByAccount(ctx context.Context, accountID string) ([]domain.Invoice, error) {
	st := r.sh.st
	defer r.sh.rlock(r.tx)()

	var out []domain.Invoice
	for _, inv := range st.invoices {
		if inv.OwnedBy(accountID) {
			inv.Lines = slices.Clone(inv.Lines)
			out = append(out, inv)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number > out[j].Number })
	return out, nil
}
