package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"vatshop/internal/db/dbtest"
	"vatshop/internal/domain"
)

func TestPostgres_Lifecycle(t *testing.T) {
	ctx := context.Background()
	pool := dbtest.Pool(ctx, t)
	repo := NewPostgres(pool)

	var cartID string
	if err := pool.QueryRow(ctx, `INSERT INTO carts DEFAULT VALUES RETURNING id::text`).Scan(&cartID); err != nil {
		t.Fatalf("insert cart: %v", err)
	}

	now := time.Now().UTC()
	if err := repo.Create(ctx, domain.Session{Token: "live", ExpiresAt: now.Add(time.Hour)}); err != nil {
		t.Fatalf("Create live: %v", err)
	}
	if err := repo.Create(ctx, domain.Session{Token: "stale", ExpiresAt: now.Add(-time.Hour)}); err != nil {
		t.Fatalf("Create stale: %v", err)
	}
	if err := repo.Create(ctx, domain.Session{Token: "live", ExpiresAt: now}); !errors.Is(err, domain.ErrAlreadyExists) {
		t.Fatalf("expected already exists, got %v", err)
	}

	s, err := repo.Get(ctx, "live")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	s.SetCartID(cartID)
	if err := repo.Save(ctx, *s); err != nil {
		t.Fatalf("Save: %v", err)
	}
	reloaded, err := repo.Get(ctx, "live")
	if err != nil {
		t.Fatalf("Get after save: %v", err)
	}
	if id, ok := reloaded.CurrentCartID(); !ok || id != cartID {
		t.Fatalf("cart id not persisted: %+v", reloaded)
	}

	n, err := repo.DeleteExpired(ctx, now)
	if err != nil {
		t.Fatalf("DeleteExpired: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 expired session, got %d", n)
	}
	if _, err := repo.Get(ctx, "stale"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected stale session gone, got %v", err)
	}
	if err := repo.Delete(ctx, "live"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
}
