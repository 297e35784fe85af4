package cart

import (
	"context"
	"sync"
	"testing"

	"vatshop/internal/db/dbtest"
	"vatshop/internal/domain"
	"vatshop/internal/repository"

	"github.com/shopspring/decimal"
)

func TestPostgres_ConcurrentMergesSumQuantities(t *testing.T) {
	ctx := context.Background()
	pool := dbtest.Pool(ctx, t)
	store := repository.NewPostgres(pool, nil)
	svc := New(store, nil)

	var accountID string
	if err := pool.QueryRow(ctx, `INSERT INTO accounts (email, password_hash) VALUES ('merge@example.com', 'x') RETURNING id::text`).Scan(&accountID); err != nil {
		t.Fatalf("insert account: %v", err)
	}
	a, err := store.Products().Upsert(ctx, domain.Product{Name: "A", VATRate: 21, Price: decimal.RequireFromString("10.00")})
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	accountCart, err := store.Carts().GetOrCreateActiveByAccount(ctx, accountID)
	if err != nil {
		t.Fatalf("account cart: %v", err)
	}
	if _, err := svc.SetQuantity(ctx, accountCart, a.ID, 3, true); err != nil {
		t.Fatalf("SetQuantity account: %v", err)
	}

	sessions := []*domain.Session{{Token: "s1"}, {Token: "s2"}}
	for i, qty := range []int{2, 4} {
		c, err := svc.Resolve(ctx, sessions[i], nil)
		if err != nil {
			t.Fatalf("Resolve anonymous: %v", err)
		}
		if _, err := svc.SetQuantity(ctx, c, a.ID, qty, true); err != nil {
			t.Fatalf("SetQuantity session %d: %v", i, err)
		}
	}

	var wg sync.WaitGroup
	errs := make([]error, len(sessions))
	for i := range sessions {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Resolve(ctx, sessions[i], &accountID)
		}(i)
	}
	wg.Wait()
	for i, err := range errs {
		if err != nil {
			t.Fatalf("Resolve with account %d: %v", i, err)
		}
	}

	merged, err := store.Carts().GetByID(ctx, accountCart.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if l := merged.LineForProduct(a.ID); l == nil || l.Quantity != 9 {
		t.Fatalf("expected 3+2+4=9, got %+v", l)
	}
	for _, sess := range sessions {
		if id, _ := sess.CurrentCartID(); id != accountCart.ID {
			t.Fatalf("session %s not pointed at account cart", sess.Token)
		}
	}
}
