package account

import (
	"context"
	"errors"
	"testing"

	"vatshop/internal/db/dbtest"
	"vatshop/internal/domain"
)

func TestPostgres_CreateAndLookup(t *testing.T) {
	ctx := context.Background()
	pool := dbtest.Pool(ctx, t)
	repo := NewPostgres(pool, nil)

	created, err := repo.Create(ctx, domain.Account{Email: "Ada@Example.com", PasswordHash: "hash", FirstName: "Ada"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.Email != "ada@example.com" {
		t.Fatalf("email not normalized: %q", created.Email)
	}

	if _, err := repo.Create(ctx, domain.Account{Email: "ADA@example.com", PasswordHash: "hash"}); !errors.Is(err, domain.ErrAlreadyExists) {
		t.Fatalf("expected already exists, got %v", err)
	}

	byEmail, err := repo.GetByEmail(ctx, "ADA@EXAMPLE.COM")
	if err != nil || byEmail.ID != created.ID {
		t.Fatalf("GetByEmail = %+v, %v", byEmail, err)
	}

	updated, err := repo.UpdateName(ctx, created.ID, "Ada", "Lovelace")
	if err != nil {
		t.Fatalf("UpdateName: %v", err)
	}
	if updated.LastName != "Lovelace" || updated.PasswordHash != "hash" {
		t.Fatalf("unexpected account %+v", updated)
	}

	if _, err := repo.GetByID(ctx, "00000000-0000-0000-0000-000000000000"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
