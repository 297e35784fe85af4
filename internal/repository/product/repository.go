package product

import (
	"context"

	"vatshop/internal/domain"
)

// Repository persists catalog products.
type Repository interface {
	List(ctx context.Context) ([]domain.Product, error)
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	ListExcept(ctx context.Context, id string, limit int) ([]domain.Product, error)
	Upsert(ctx context.Context, product domain.Product) (*domain.Product, error)
}
