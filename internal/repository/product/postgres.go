package product

import (
	"context"
	"errors"
	"fmt"

	"vatshop/internal/db"
	"vatshop/internal/domain"
	"vatshop/internal/logging"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

const productColumns = `id::text, name, description, vat_rate, price, created_at`

type postgresRepo struct {
	q      db.Querier
	logger *zap.Logger
}

func NewPostgres(q db.Querier, logger *zap.Logger) Repository {
	return &postgresRepo{q: q, logger: logging.OrNop(logger)}
}

func (r *postgresRepo) List(ctx context.Context) ([]domain.Product, error) {
	rows, err := r.q.Query(ctx, `SELECT `+productColumns+` FROM products ORDER BY name ASC`)
	if err != nil {
		r.logger.Error("list products", zap.Error(err))
		return nil, err
	}
	return r.collect(rows)
}

func (r *postgresRepo) ListExcept(ctx context.Context, id string, limit int) ([]domain.Product, error) {
	const q = `SELECT ` + productColumns + `
FROM products
WHERE id::text <> $1
ORDER BY created_at ASC
LIMIT $2
`
	rows, err := r.q.Query(ctx, q, id, limit)
	if err != nil {
		r.logger.Error("list related products", zap.String("product_id", id), zap.Error(err))
		return nil, err
	}
	return r.collect(rows)
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	const q = `SELECT ` + productColumns + ` FROM products WHERE id::text = $1`
	var p domain.Product
	err := r.q.QueryRow(ctx, q, id).Scan(&p.ID, &p.Name, &p.Description, &p.VATRate, &p.Price, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug("product not found", zap.String("product_id", id))
			return nil, domain.ErrNotFound
		}
		r.logger.Error("get product", zap.String("product_id", id), zap.Error(err))
		return nil, err
	}
	return &p, nil
}

func (r *postgresRepo) Upsert(ctx context.Context, product domain.Product) (*domain.Product, error) {
	const q = `
INSERT INTO products (id, name, description, vat_rate, price)
VALUES (COALESCE(NULLIF($1, '')::uuid, gen_random_uuid()), $2, $3, $4, $5)
ON CONFLICT (name) DO UPDATE SET
    description = EXCLUDED.description,
    vat_rate = EXCLUDED.vat_rate,
    price = EXCLUDED.price
RETURNING ` + productColumns
	var res domain.Product
	err := r.q.QueryRow(ctx, q, product.ID, product.Name, product.Description, product.VATRate, product.Price).
		Scan(&res.ID, &res.Name, &res.Description, &res.VATRate, &res.Price, &res.CreatedAt)
	if err != nil {
		r.logger.Error("upsert product", zap.String("name", product.Name), zap.Error(err))
		return nil, err
	}
	if product.ID != "" && res.ID != product.ID {
		return nil, fmt.Errorf("product repo: id mismatch for name=%s existing_id=%s import_id=%s: %w", product.Name, res.ID, product.ID, domain.ErrConflict)
	}
	r.logger.Info("upserted product", zap.String("name", res.Name), zap.String("product_id", res.ID))
	return &res, nil
}

func (r *postgresRepo) collect(rows pgx.Rows) ([]domain.Product, error) {
	defer rows.Close()
	var result []domain.Product
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.VATRate, &p.Price, &p.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
