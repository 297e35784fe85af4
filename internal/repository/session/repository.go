package session

import (
	"context"
	"time"

	"vatshop/internal/domain"
)

type Repository interface {
	Create(ctx context.Context, s domain.Session) error
	Get(ctx context.Context, token string) (*domain.Session, error)
	// Save writes the cart pointer and expiry of an existing session.
	Save(ctx context.Context, s domain.Session) error
	Delete(ctx context.Context, token string) error
	// DeleteExpired removes sessions that expired before now and reports how many.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
