package account

import (
	"context"

	"vatshop/internal/domain"
)

// Repository persists and fetches accounts. Emails are matched case-insensitively.
type Repository interface {
	Create(ctx context.Context, a domain.Account) (*domain.Account, error)
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)
	GetByID(ctx context.Context, id string) (*domain.Account, error)
	UpdateName(ctx context.Context, id, firstName, lastName string) (*domain.Account, error)
}
