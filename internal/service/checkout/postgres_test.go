package checkout

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"vatshop/internal/db/dbtest"
	"vatshop/internal/repository"
)

func TestPostgres_ConcurrentConvertsGetDistinctNumbers(t *testing.T) {
	ctx := context.Background()
	pool := dbtest.Pool(ctx, t)
	store := repository.NewPostgres(pool, nil)
	svc := New(store, nil).WithClock(fixedClock(jan))

	const n = 6
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
	for i := 1; i <= n; i++ {
		if want := fmt.Sprintf("202401%04d", i); !seen[want] {
			t.Fatalf("expected gapless numbering, missing %s in %v", want, numbers)
		}
	}
	for _, id := range ids {
		c, err := store.Carts().GetByID(ctx, id)
		if err != nil || c.IsActive {
			t.Fatalf("cart %s not deactivated: %+v, %v", id, c, err)
		}
	}
}
