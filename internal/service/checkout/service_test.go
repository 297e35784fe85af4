package checkout

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"vatshop/internal/domain"
	"vatshop/internal/repository"
	cartrepo "vatshop/internal/repository/cart"
	invoicerepo "vatshop/internal/repository/invoice"
	"vatshop/internal/repository/memory"

	"github.com/shopspring/decimal"
)

var jan = time.Date(2024, time.January, 20, 9, 30, 0, 0, time.UTC)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

// seedCart builds an active cart with A (10.00, 21%, ×2) and B (5.00, 6%, ×1).
func seedCart(t *testing.T, store repository.Store, accountID *string) *domain.Cart {
	t.Helper()
	ctx := context.Background()
	c, err := store.Carts().Create(ctx, cartrepo.CreateCartInput{AccountID: accountID})
	if err != nil {
		t.Fatalf("Create cart: %v", err)
	}
	a, _ := store.Products().Upsert(ctx, domain.Product{Name: "A", Description: "alpha", VATRate: 21, Price: decimal.RequireFromString("10.00")})
	b, _ := store.Products().Upsert(ctx, domain.Product{Name: "B", Description: "beta", VATRate: 6, Price: decimal.RequireFromString("5.00")})
	if _, err := store.Carts().AddLine(ctx, c.ID, &a.ID, domain.SnapshotOf(*a), 2); err != nil {
		t.Fatalf("AddLine A: %v", err)
	}
	if _, err := store.Carts().AddLine(ctx, c.ID, &b.ID, domain.SnapshotOf(*b), 1); err != nil {
		t.Fatalf("AddLine B: %v", err)
	}
	contact := domain.Contact{FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com"}
	address := domain.Address{Street: "Rue 1", Zipcode: "1000", City: "Brussels"}
	if err := store.Carts().UpdateDetails(ctx, c.ID, contact, address); err != nil {
		t.Fatalf("UpdateDetails: %v", err)
	}
	if err := store.Carts().SetPaymentIntent(ctx, c.ID, "pi_"+c.ID); err != nil {
		t.Fatalf("SetPaymentIntent: %v", err)
	}
	c, _ = store.Carts().GetByID(ctx, c.ID)
	return c
}

func TestConvertEndToEnd(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	accountID := "acc-1"
	c := seedCart(t, store, &accountID)
	svc := New(store, nil).WithClock(fixedClock(jan))

	inv, err := svc.Convert(ctx, c.ID)
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if inv.Number != "2024010001" || inv.Status != domain.InvoiceStatusDone {
		t.Fatalf("unexpected invoice header %+v", inv)
	}
	if !inv.OwnedBy(accountID) || inv.Contact != c.Contact || inv.Address != c.Address {
		t.Fatalf("cart details not copied: %+v", inv)
	}
	if inv.PaymentIntentID == nil || *inv.PaymentIntentID != *c.PaymentIntentID {
		t.Fatalf("payment intent not copied")
	}
	if len(inv.Lines) != len(c.Lines) {
		t.Fatalf("expected %d lines, got %d", len(c.Lines), len(inv.Lines))
	}
	for i, l := range inv.Lines {
		src := c.Lines[i]
		if l.ID == src.ID || l.Snapshot != src.Snapshot || l.Quantity != src.Quantity || *l.ProductID != *src.ProductID {
			t.Fatalf("line %d not an identical copy: %+v vs %+v", i, l, src)
		}
	}

	billing := svc.Billing(inv)
	if !billing.Subtotal.Equal(decimal.RequireFromString("25.00")) || !billing.Total.Equal(decimal.RequireFromString("29.50")) {
		t.Fatalf("unexpected billing %+v", billing)
	}

	stored, _ := store.Carts().GetByID(ctx, c.ID)
	if stored.IsActive {
		t.Fatalf("cart should be inactive after conversion")
	}

	// Later cart changes never reach the invoice.
	if err := store.Carts().SetLineQuantity(ctx, c.Lines[0].ID, 9); err != nil {
		t.Fatalf("SetLineQuantity: %v", err)
	}
	reloaded, err := svc.Get(ctx, inv.Number)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if reloaded.Lines[0].Quantity != 2 {
		t.Fatalf("invoice line changed with cart: %d", reloaded.Lines[0].Quantity)
	}
}

func TestConvertInactiveCart(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	c := seedCart(t, store, nil)
	svc := New(store, nil).WithClock(fixedClock(jan))

	if _, err := svc.Convert(ctx, c.ID); err != nil {
		t.Fatalf("first Convert: %v", err)
	}
	if _, err := svc.Convert(ctx, c.ID); !errors.Is(err, domain.ErrCartInactive) {
		t.Fatalf("expected inactive cart error, got %v", err)
	}
	next, _ := store.Invoices().NextNumber(ctx, jan)
	if next != "2024010002" {
		t.Fatalf("second conversion created an invoice, next = %s", next)
	}
}

func TestConvertNumbersSequentiallyPerMonth(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	for _, n := range []string{"2024010001", "2024010002", "2024010003"} {
		if _, err := store.Invoices().Create(ctx, domain.Invoice{Number: n, IssuedOn: jan, Status: domain.InvoiceStatusDone}); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	inv, err := New(store, nil).WithClock(fixedClock(jan)).Convert(ctx, seedCart(t, store, nil).ID)
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if inv.Number != "2024010004" {
		t.Fatalf("number = %s, want 2024010004", inv.Number)
	}

	feb := time.Date(2024, time.February, 1, 0, 0, 1, 0, time.UTC)
	inv, err = New(store, nil).WithClock(fixedClock(feb)).Convert(ctx, seedCart(t, store, nil).ID)
	if err != nil {
		t.Fatalf("Convert feb: %v", err)
	}
	if inv.Number != "2024020001" {
		t.Fatalf("number = %s, want 2024020001", inv.Number)
	}
}

func TestConvertConcurrentCartsGetDistinctNumbers(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	svc := New(store, nil).WithClock(fixedClock(jan))

	const n = 8
	ids := make([]string, n)
	for i := range ids {
		ids[i] = seedCart(t, store, nil).ID
	}

	var wg sync.WaitGroup
	numbers := make([]string, n)
	errs := make([]error, n)
	for i := range ids {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			inv, err := svc.Convert(ctx, ids[i])
			errs[i] = err
			if err == nil {
				numbers[i] = inv.Number
			}
		}(i)
	}
	wg.Wait()

	seen := map[string]bool{}
	for i, num := range numbers {
		if errs[i] != nil {
			t.Fatalf("Convert %d: %v", i, errs[i])
		}
		if seen[num] {
			t.Fatalf("duplicate invoice number %s", num)
		}
		seen[num] = true
	}
}

type failingCarts struct {
	cartrepo.Repository
}

func (failingCarts) Deactivate(context.Context, string) error {
	return errors.New("disk full")
}

type conflictingInvoices struct {
	invoicerepo.Repository
	remaining *int
}

func (c conflictingInvoices) Create(ctx context.Context, inv domain.Invoice) (*domain.Invoice, error) {
	if *c.remaining > 0 {
		*c.remaining--
		return nil, domain.ErrConflict
	}
	return c.Repository.Create(ctx, inv)
}

// faultyStore injects failures into the repositories handed to transactions.
type faultyStore struct {
	repository.Store
	failDeactivate bool
	conflicts      *int
}

func (s faultyStore) Carts() cartrepo.Repository {
	if s.failDeactivate {
		return failingCarts{s.Store.Carts()}
	}
	return s.Store.Carts()
}

func (s faultyStore) Invoices() invoicerepo.Repository {
	if s.conflicts != nil {
		return conflictingInvoices{Repository: s.Store.Invoices(), remaining: s.conflicts}
	}
	return s.Store.Invoices()
}

func (s faultyStore) InTx(ctx context.Context, fn func(tx repository.Store) error) error {
	return s.Store.InTx(ctx, func(tx repository.Store) error {
		return fn(faultyStore{Store: tx, failDeactivate: s.failDeactivate, conflicts: s.conflicts})
	})
}

func TestConvertIsAtomic(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	c := seedCart(t, store, nil)
	svc := New(faultyStore{Store: store, failDeactivate: true}, nil).WithClock(fixedClock(jan))

	if _, err := svc.Convert(ctx, c.ID); err == nil {
		t.Fatalf("expected failure")
	}
	if _, err := store.Invoices().GetByPaymentIntent(ctx, *c.PaymentIntentID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("partial invoice left behind: %v", err)
	}
	stored, _ := store.Carts().GetByID(ctx, c.ID)
	if !stored.IsActive {
		t.Fatalf("cart deactivated despite failure")
	}
}

func TestConvertRetriesNumberConflicts(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	c := seedCart(t, store, nil)

	conflicts := 2
	inv, err := New(faultyStore{Store: store, conflicts: &conflicts}, nil).WithClock(fixedClock(jan)).Convert(ctx, c.ID)
	if err != nil {
		t.Fatalf("Convert after two conflicts: %v", err)
	}
	if inv.Number != "2024010001" {
		t.Fatalf("number = %s", inv.Number)
	}

	other := seedCart(t, store, nil)
	conflicts = maxAttempts
	if _, err := New(faultyStore{Store: store, conflicts: &conflicts}, nil).WithClock(fixedClock(jan)).Convert(ctx, other.ID); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected conflict after %d attempts, got %v", maxAttempts, err)
	}
}

func TestGetForAccount(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	owner := "acc-1"
	svc := New(store, nil).WithClock(fixedClock(jan))
	inv, err := svc.Convert(ctx, seedCart(t, store, &owner).ID)
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}

	if _, err := svc.GetForAccount(ctx, inv.Number, owner); err != nil {
		t.Fatalf("GetForAccount owner: %v", err)
	}
	if _, err := svc.GetForAccount(ctx, inv.Number, "someone-else"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found for other account, got %v", err)
	}
	list, err := svc.ListForAccount(ctx, owner)
	if err != nil || len(list) != 1 {
		t.Fatalf("ListForAccount = %v, %v", list, err)
	}
}
