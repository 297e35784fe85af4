// Package repository groups the per-entity repositories behind a Store so
// services can run several of them in one transaction.
package repository

import (
	"context"

	"vatshop/internal/db"
	"vatshop/internal/logging"
	"vatshop/internal/repository/account"
	"vatshop/internal/repository/cart"
	"vatshop/internal/repository/invoice"
	"vatshop/internal/repository/product"
	"vatshop/internal/repository/session"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// Store is a unit of work over all repositories. Repositories returned by a
// Store passed to an InTx callback share that transaction.
type Store interface {
	Products() product.Repository
	Carts() cart.Repository
	Invoices() invoice.Repository
	Accounts() account.Repository
	Sessions() session.Repository
	// InTx runs fn in a transaction and commits when fn returns nil. Calling
	// InTx on a transactional Store joins the running transaction.
	InTx(ctx context.Context, fn func(tx Store) error) error
	Ping(ctx context.Context) error
}

type postgresStore struct {
	pool   *pgxpool.Pool
	inTx   bool
	logger *zap.Logger

	products product.Repository
	carts    cart.Repository
	invoices invoice.Repository
	accounts account.Repository
	sessions session.Repository
}

// NewPostgres returns a Store backed by pool.
func NewPostgres(pool *pgxpool.Pool, logger *zap.Logger) Store {
	return newPostgresStore(pool, pool, false, logging.OrNop(logger))
}

func newPostgresStore(pool *pgxpool.Pool, q db.Querier, inTx bool, logger *zap.Logger) *postgresStore {
	return &postgresStore{
		pool:     pool,
		inTx:     inTx,
		logger:   logger,
		products: product.NewPostgres(q, logger.Named("product_repo")),
		carts:    cart.NewPostgres(q, logger.Named("cart_repo")),
		invoices: invoice.NewPostgres(q, logger.Named("invoice_repo")),
		accounts: account.NewPostgres(q, logger.Named("account_repo")),
		sessions: session.NewPostgres(q),
	}
}

func (s *postgresStore) Products() product.Repository { return s.products }
func (s *postgresStore) Carts() cart.Repository       { return s.carts }
func (s *postgresStore) Invoices() invoice.Repository { return s.invoices }
func (s *postgresStore) Accounts() account.Repository { return s.accounts }
func (s *postgresStore) Sessions() session.Repository { return s.sessions }

func (s *postgresStore) InTx(ctx context.Context, fn func(tx Store) error) error {
	if s.inTx {
		return fn(s)
	}
	return db.InTx(ctx, s.pool, func(tx pgx.Tx) error {
		return fn(newPostgresStore(s.pool, tx, true, s.logger))
	})
}

func (s *postgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}
