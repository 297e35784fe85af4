package account

import (
	"context"
	"errors"
	"strings"

	"vatshop/internal/db"
	"vatshop/internal/domain"
	"vatshop/internal/logging"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

const accountColumns = `id::text, email, password_hash, first_name, last_name, created_at`

type postgresRepo struct {
	q      db.Querier
	logger *zap.Logger
}

// NewPostgres returns a Repository backed by Postgres.
func NewPostgres(q db.Querier, logger *zap.Logger) Repository {
	return &postgresRepo{q: q, logger: logging.OrNop(logger)}
}

func (r *postgresRepo) Create(ctx context.Context, a domain.Account) (*domain.Account, error) {
	const q = `
INSERT INTO accounts (email, password_hash, first_name, last_name)
VALUES ($1, $2, $3, $4)
RETURNING ` + accountColumns
	return r.scanAccount(r.q.QueryRow(ctx, q, strings.ToLower(a.Email), a.PasswordHash, a.FirstName, a.LastName))
}

func (r *postgresRepo) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	const q = `
SELECT ` + accountColumns + `
FROM accounts
WHERE lower(email) = lower($1)
LIMIT 1
`
	return r.scanAccount(r.q.QueryRow(ctx, q, email))
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	return r.scanAccount(r.q.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id::text = $1`, id))
}

func (r *postgresRepo) UpdateName(ctx context.Context, id, firstName, lastName string) (*domain.Account, error) {
	const q = `
UPDATE accounts
SET first_name = $1, last_name = $2
WHERE id::text = $3
RETURNING ` + accountColumns
	return r.scanAccount(r.q.QueryRow(ctx, q, firstName, lastName, id))
}

func (r *postgresRepo) scanAccount(row pgx.Row) (*domain.Account, error) {
	var a domain.Account
	err := row.Scan(&a.ID, &a.Email, &a.PasswordHash, &a.FirstName, &a.LastName, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		if db.IsUniqueViolation(err) {
			return nil, domain.ErrAlreadyExists
		}
		r.logger.Error("scan account", zap.Error(err))
		return nil, err
	}
	return &a, nil
}
