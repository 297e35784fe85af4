package invoice

import (
	"context"
	"errors"
	"fmt"
	"time"

	"vatshop/internal/db"
	"vatshop/internal/domain"
	"vatshop/internal/logging"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const invoiceColumns = `id::text, invoice_number, invoice_date, invoice_status, account_id::text,
       COALESCE(contact_first_name, ''), COALESCE(contact_last_name, ''), COALESCE(contact_email, ''), COALESCE(contact_phone, ''),
       COALESCE(address, ''), COALESCE(address_zipcode, ''), COALESCE(address_city, ''),
       payment_intent_id, created_at`

const lineColumns = `id::text, invoice_id::text, product_id::text, product_name, product_description, product_vat_rate, product_price, quantity, created_at`

const numberConstraint = "invoices_invoice_number_key"

type postgresRepo struct {
	q      db.Querier
	logger *zap.Logger
}

func NewPostgres(q db.Querier, logger *zap.Logger) Repository {
	return &postgresRepo{q: q, logger: logging.OrNop(logger)}
}

func (r *postgresRepo) NextNumber(ctx context.Context, asOf time.Time) (string, error) {
	prefix := NumberPrefix(asOf)
	if _, err := r.q.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext('invoice_number:' || $1))`, prefix); err != nil {
		return "", fmt.Errorf("lock invoice numbers for %s: %w", prefix, err)
	}

	const q = `
SELECT COALESCE(MAX(substring(invoice_number FROM 7)::bigint), 0)
FROM invoices
WHERE invoice_number ~ ('^' || $1 || '[0-9]+$')
`
	var highest int64
	if err := r.q.QueryRow(ctx, q, prefix).Scan(&highest); err != nil {
		return "", fmt.Errorf("scan invoice numbers for %s: %w", prefix, err)
	}
	return FormatNumber(prefix, int(highest)+1), nil
}

func (r *postgresRepo) Create(ctx context.Context, inv domain.Invoice) (*domain.Invoice, error) {
	const header = `
INSERT INTO invoices (
    invoice_number, invoice_date, invoice_status, account_id,
    contact_first_name, contact_last_name, contact_email, contact_phone,
    address, address_zipcode, address_city, payment_intent_id
) VALUES ($1, $2, $3, $4::uuid, NULLIF($5, ''), NULLIF($6, ''), NULLIF($7, ''), NULLIF($8, ''), NULLIF($9, ''), NULLIF($10, ''), NULLIF($11, ''), $12)
RETURNING ` + invoiceColumns
	created, err := scanInvoice(r.q.QueryRow(ctx, header,
		inv.Number, inv.IssuedOn, string(inv.Status), inv.AccountID,
		inv.Contact.FirstName, inv.Contact.LastName, inv.Contact.Email, inv.Contact.Phone,
		inv.Address.Street, inv.Address.Zipcode, inv.Address.City, inv.PaymentIntentID,
	))
	if err != nil {
		switch db.ViolatedConstraint(err) {
		case numberConstraint:
			return nil, fmt.Errorf("invoice number %s taken: %w", inv.Number, domain.ErrConflict)
		case "":
			r.logger.Error("create invoice", zap.String("number", inv.Number), zap.Error(err))
			return nil, err
		default:
			return nil, domain.ErrAlreadyExists
		}
	}

	const line = `
INSERT INTO invoice_lines (invoice_id, product_id, product_name, product_description, product_vat_rate, product_price, quantity)
VALUES ($1::uuid, $2::uuid, $3, $4, $5, $6, $7)
RETURNING ` + lineColumns
	for _, l := range inv.Lines {
		s := l.Snapshot
		stored, err := scanLine(r.q.QueryRow(ctx, line, created.ID, l.ProductID,
			s.Name(), s.Description(), s.VATRate(), s.UnitPrice(), l.Quantity))
		if err != nil {
			r.logger.Error("create invoice line", zap.String("number", inv.Number), zap.Error(err))
			return nil, err
		}
		created.Lines = append(created.Lines, *stored)
	}
	r.logger.Info("created invoice", zap.String("number", created.Number), zap.Int("lines", len(created.Lines)))
	return created, nil
}

func (r *postgresRepo) GetByNumber(ctx context.Context, number string) (*domain.Invoice, error) {
	return r.fetch(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE invoice_number = $1`, number)
}

func (r *postgresRepo) GetByPaymentIntent(ctx context.Context, intentID string) (*domain.Invoice, error) {
	return r.fetch(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE payment_intent_id = $1`, intentID)
}

func (r *postgresRepo) ListByAccount(ctx context.Context, accountID string) ([]domain.Invoice, error) {
	const q = `SELECT ` + invoiceColumns + `
FROM invoices
WHERE account_id::text = $1
ORDER BY invoice_number DESC
`
	rows, err := r.q.Query(ctx, q, accountID)
	if err != nil {
		r.logger.Error("list invoices", zap.String("account_id", accountID), zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var result []domain.Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *inv)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range result {
		if result[i].Lines, err = r.lines(ctx, result[i].ID); err != nil {
			return nil, err
		}
	}
	return result, nil
}

func (r *postgresRepo) fetch(ctx context.Context, q string, args ...any) (*domain.Invoice, error) {
	inv, err := scanInvoice(r.q.QueryRow(ctx, q, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if inv.Lines, err = r.lines(ctx, inv.ID); err != nil {
		return nil, err
	}
	return inv, nil
}

func (r *postgresRepo) lines(ctx context.Context, invoiceID string) ([]domain.LineItem, error) {
	rows, err := r.q.Query(ctx, `SELECT `+lineColumns+` FROM invoice_lines WHERE invoice_id::text = $1 ORDER BY created_at ASC, id ASC`, invoiceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.LineItem
	for rows.Next() {
		l, err := scanLine(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *l)
	}
	return out, rows.Err()
}

func scanInvoice(row pgx.Row) (*domain.Invoice, error) {
	var (
		inv    domain.Invoice
		status string
	)
	if err := row.Scan(
		&inv.ID,
		&inv.Number,
		&inv.IssuedOn,
		&status,
		&inv.AccountID,
		&inv.Contact.FirstName,
		&inv.Contact.LastName,
		&inv.Contact.Email,
		&inv.Contact.Phone,
		&inv.Address.Street,
		&inv.Address.Zipcode,
		&inv.Address.City,
		&inv.PaymentIntentID,
		&inv.CreatedAt,
	); err != nil {
		return nil, err
	}
	inv.Status = domain.InvoiceStatus(status)
	return &inv, nil
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
