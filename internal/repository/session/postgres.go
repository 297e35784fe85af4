package session

import (
	"context"
	"errors"
	"time"

	"vatshop/internal/db"
	"vatshop/internal/domain"

	"github.com/jackc/pgx/v5"
)

type postgresRepo struct {
	q db.Querier
}

func NewPostgres(q db.Querier) Repository {
	return &postgresRepo{q: q}
}

func (r *postgresRepo) Create(ctx context.Context, s domain.Session) error {
	const q = `
INSERT INTO sessions (token, cart_id, expires_at)
VALUES ($1, $2::uuid, $3)
`
	_, err := r.q.Exec(ctx, q, s.Token, s.CartID, s.ExpiresAt)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return domain.ErrAlreadyExists
		}
		return err
	}
	return nil
}

func (r *postgresRepo) Get(ctx context.Context, token string) (*domain.Session, error) {
	const q = `
SELECT token, cart_id::text, expires_at, created_at
FROM sessions
WHERE token = $1
LIMIT 1
`
	var out domain.Session
	if err := r.q.QueryRow(ctx, q, token).Scan(&out.Token, &out.CartID, &out.ExpiresAt, &out.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &out, nil
}

func (r *postgresRepo) Save(ctx context.Context, s domain.Session) error {
	cmd, err := r.q.Exec(ctx, `UPDATE sessions SET cart_id = $1::uuid, expires_at = $2 WHERE token = $3`, s.CartID, s.ExpiresAt, s.Token)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postgresRepo) Delete(ctx context.Context, token string) error {
	cmd, err := r.q.Exec(ctx, `DELETE FROM sessions WHERE token = $1`, token)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postgresRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	cmd, err := r.q.Exec(ctx, `DELETE FROM sessions WHERE expires_at < $1`, now)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}
