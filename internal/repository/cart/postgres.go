package cart

import (
	"context"
	"errors"

	"vatshop/internal/db"
	"vatshop/internal/domain"
	"vatshop/internal/logging"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const cartColumns = `id::text, account_id::text,
       COALESCE(contact_first_name, ''), COALESCE(contact_last_name, ''), COALESCE(contact_email, ''), COALESCE(contact_phone, ''),
       COALESCE(address, ''), COALESCE(address_zipcode, ''), COALESCE(address_city, ''),
       payment_intent_id, is_active, created_at`

type postgresRepo struct {
	q      db.Querier
	logger *zap.Logger
}

func NewPostgres(q db.Querier, logger *zap.Logger) Repository {
	return &postgresRepo{q: q, logger: logging.OrNop(logger)}
}

func (r *postgresRepo) Create(ctx context.Context, in CreateCartInput) (*domain.Cart, error) {
	const q = `
INSERT INTO carts (account_id, is_active)
VALUES ($1::uuid, TRUE)
RETURNING ` + cartColumns
	cart, err := scanCart(r.q.QueryRow(ctx, q, in.AccountID))
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, domain.ErrAlreadyExists
		}
		return nil, err
	}
	r.logger.Debug("created cart", zap.String("cart_id", cart.ID))
	return cart, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Cart, error) {
	return r.fetchCart(ctx, `SELECT `+cartColumns+` FROM carts WHERE id::text = $1`, id)
}

func (r *postgresRepo) GetForUpdate(ctx context.Context, id string) (*domain.Cart, error) {
	return r.fetchCart(ctx, `SELECT `+cartColumns+` FROM carts WHERE id::text = $1 FOR UPDATE`, id)
}

func (r *postgresRepo) GetActiveByAccount(ctx context.Context, accountID string) (*domain.Cart, error) {
	const cartQuery = `SELECT ` + cartColumns + `
FROM carts
WHERE account_id::text = $1 AND is_active
`
	return r.fetchCart(ctx, cartQuery, accountID)
}

func (r *postgresRepo) GetOrCreateActiveByAccount(ctx context.Context, accountID string) (*domain.Cart, error) {
	cart, err := r.GetActiveByAccount(ctx, accountID)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	// A concurrent login may insert first; the partial unique index turns
	// that into a no-op and the re-select below picks up the winner.
	const insert = `
INSERT INTO carts (account_id, is_active)
VALUES ($1::uuid, TRUE)
ON CONFLICT (account_id) WHERE is_active AND account_id IS NOT NULL DO NOTHING
`
	if _, err := r.q.Exec(ctx, insert, accountID); err != nil {
		return nil, err
	}
	return r.GetActiveByAccount(ctx, accountID)
}

func (r *postgresRepo) GetByPaymentIntent(ctx context.Context, intentID string) (*domain.Cart, error) {
	return r.fetchCart(ctx, `SELECT `+cartColumns+` FROM carts WHERE payment_intent_id = $1`, intentID)
}

func (r *postgresRepo) AddLine(ctx context.Context, cartID string, productID *string, snapshot domain.LineSnapshot, quantity int) (*domain.LineItem, error) {
	const q = `
INSERT INTO cart_lines (cart_id, product_id, product_name, product_description, product_vat_rate, product_price, quantity)
VALUES ($1::uuid, $2::uuid, $3, $4, $5, $6, $7)
RETURNING id::text, cart_id::text, product_id::text, product_name, product_description, product_vat_rate, product_price, quantity, created_at
`
	line, err := scanLine(r.q.QueryRow(ctx, q, cartID, productID,
		snapshot.Name(), snapshot.Description(), snapshot.VATRate(), snapshot.UnitPrice(), quantity))
	if err != nil {
		r.logger.Error("add cart line", zap.String("cart_id", cartID), zap.Error(err))
		return nil, err
	}
	return line, nil
}

func (r *postgresRepo) UpdateLine(ctx context.Context, lineID string, snapshot domain.LineSnapshot, quantity int) error {
	const q = `
UPDATE cart_lines
SET product_name = $1,
    product_description = $2,
    product_vat_rate = $3,
    product_price = $4,
    quantity = $5
WHERE id::text = $6
`
	return r.execOne(ctx, q, snapshot.Name(), snapshot.Description(), snapshot.VATRate(), snapshot.UnitPrice(), quantity, lineID)
}

func (r *postgresRepo) SetLineQuantity(ctx context.Context, lineID string, quantity int) error {
	return r.execOne(ctx, `UPDATE cart_lines SET quantity = $1 WHERE id::text = $2`, quantity, lineID)
}

func (r *postgresRepo) DeleteLine(ctx context.Context, lineID string) error {
	return r.execOne(ctx, `DELETE FROM cart_lines WHERE id::text = $1`, lineID)
}

func (r *postgresRepo) UpdateDetails(ctx context.Context, cartID string, contact domain.Contact, address domain.Address) error {
	const q = `
UPDATE carts
SET contact_first_name = NULLIF($1, ''),
    contact_last_name = NULLIF($2, ''),
    contact_email = NULLIF($3, ''),
    contact_phone = NULLIF($4, ''),
    address = NULLIF($5, ''),
    address_zipcode = NULLIF($6, ''),
    address_city = NULLIF($7, '')
WHERE id::text = $8
`
	return r.execOne(ctx, q,
		contact.FirstName, contact.LastName, contact.Email, contact.Phone,
		address.Street, address.Zipcode, address.City, cartID)
}

func (r *postgresRepo) SetPaymentIntent(ctx context.Context, cartID, intentID string) error {
	err := r.execOne(ctx, `UPDATE carts SET payment_intent_id = $1 WHERE id::text = $2`, intentID, cartID)
	if db.IsUniqueViolation(err) {
		return domain.ErrAlreadyExists
	}
	return err
}

func (r *postgresRepo) Deactivate(ctx context.Context, cartID string) error {
	cmd, err := r.q.Exec(ctx, `UPDATE carts SET is_active = FALSE WHERE id::text = $1 AND is_active`, cartID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrCartInactive
	}
	r.logger.Debug("deactivated cart", zap.String("cart_id", cartID))
	return nil
}

func (r *postgresRepo) execOne(ctx context.Context, q string, args ...any) error {
	cmd, err := r.q.Exec(ctx, q, args...)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postgresRepo) fetchCart(ctx context.Context, cartQuery string, args ...any) (*domain.Cart, error) {
	cart, err := scanCart(r.q.QueryRow(ctx, cartQuery, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	const linesQuery = `
SELECT id::text, cart_id::text, product_id::text, product_name, product_description, product_vat_rate, product_price, quantity, created_at
FROM cart_lines
WHERE cart_id::text = $1
ORDER BY created_at ASC, id ASC
`
	rows, err := r.q.Query(ctx, linesQuery, cart.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		line, err := scanLine(rows)
		if err != nil {
			return nil, err
		}
		cart.Lines = append(cart.Lines, *line)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return cart, nil
}

func scanCart(row pgx.Row) (*domain.Cart, error) {
	var cart domain.Cart
	if err := row.Scan(
		&cart.ID,
		&cart.AccountID,
		&cart.Contact.FirstName,
		&cart.Contact.LastName,
		&cart.Contact.Email,
		&cart.Contact.Phone,
		&cart.Address.Street,
		&cart.Address.Zipcode,
		&cart.Address.City,
		&cart.PaymentIntentID,
		&cart.IsActive,
		&cart.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &cart, nil
}

func scanLine(row pgx.Row) (*domain.LineItem, error) {
	var (
		line        domain.LineItem
		name        string
		description string
		vatRate     int
		price       decimal.Decimal
	)
	if err := row.Scan(&line.ID, &line.OwnerID, &line.ProductID, &name, &description, &vatRate, &price, &line.Quantity, &line.CreatedAt); err != nil {
		return nil, err
	}
	line.Snapshot = domain.NewLineSnapshot(name, description, vatRate, price)
	return &line, nil
}
