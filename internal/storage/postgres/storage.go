package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	domainErrors "github.com/ganzorig/qpaygate/internal/domain/errors"
	"github.com/ganzorig/qpaygate/internal/domain/model"
	"github.com/ganzorig/qpaygate/internal/domain/repository"
)

// Pool is the subset of pgxpool.Pool the storage relies on. pgxmock
// satisfies it in tests.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
	Ping(ctx context.Context) error
	Close()
}

var newPgxPool = func(ctx context.Context, cfg *pgxpool.Config) (Pool, error) {
	return pgxpool.NewWithConfig(ctx, cfg)
}

// Storage acts as repository facade backed by PostgreSQL.
type Storage struct {
	pool   Pool
	logger *slog.Logger
}

type merchantRepository struct {
	storage *Storage
}

type orderRepository struct {
	storage *Storage
}

// New creates storage with schema initialization.
func New(ctx context.Context, dsn string, logger *slog.Logger) (*Storage, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}

	pool, err := newPgxPool(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}

	storage := &Storage{pool: pool, logger: logger}
	if err := storage.initSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return storage, nil
}

// Close releases database resources.
func (s *Storage) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Factory methods for domain repositories.
func (s *Storage) Merchants() repository.MerchantRepository {
	return &merchantRepository{storage: s}
}

func (s *Storage) Orders() repository.OrderRepository {
	return &orderRepository{storage: s}
}

func (s *Storage) initSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS merchants (
            id SERIAL PRIMARY KEY,
            login TEXT UNIQUE NOT NULL,
            password_hash TEXT NOT NULL,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE TABLE IF NOT EXISTS orders (
            id SERIAL PRIMARY KEY,
            merchant_id BIGINT NOT NULL REFERENCES merchants(id),
            number TEXT NOT NULL,
            amount DOUBLE PRECISION NOT NULL,
            receiver_email TEXT NOT NULL DEFAULT '',
            description TEXT NOT NULL DEFAULT '',
            status TEXT NOT NULL,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            paid_at TIMESTAMPTZ,
            UNIQUE (merchant_id, number)
        )`,
		`CREATE TABLE IF NOT EXISTS invoices (
            order_id BIGINT PRIMARY KEY REFERENCES orders(id),
            invoice_id TEXT UNIQUE NOT NULL,
            payment_ref TEXT NOT NULL,
            qr_image TEXT NOT NULL DEFAULT '',
            qr_text TEXT NOT NULL DEFAULT '',
            deeplinks JSONB NOT NULL DEFAULT '[]',
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE TABLE IF NOT EXISTS order_notes (
            id SERIAL PRIMARY KEY,
            order_id BIGINT NOT NULL REFERENCES orders(id),
            note TEXT NOT NULL,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE INDEX IF NOT EXISTS idx_orders_status ON orders(status, updated_at)`,
		`CREATE INDEX IF NOT EXISTS idx_order_notes_order ON order_notes(order_id, created_at)`,
	}

	for _, stmt := range statements {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}

	return nil
}

// --- MerchantRepository implementation ---

func (r *merchantRepository) Create(ctx context.Context, login, passwordHash string) (*model.Merchant, error) {
	const query = `INSERT INTO merchants (login, password_hash) VALUES ($1, $2) RETURNING id, created_at`
	var m model.Merchant
	err := r.storage.pool.QueryRow(ctx, query, login, passwordHash).Scan(&m.ID, &m.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, domainErrors.ErrAlreadyExists
		}
		return nil, err
	}
	m.Login = login
	m.PasswordHash = passwordHash
	return &m, nil
}

func (r *merchantRepository) GetByLogin(ctx context.Context, login string) (*model.Merchant, error) {
	const query = `SELECT id, login, password_hash, created_at FROM merchants WHERE login=$1`
	var m model.Merchant
	err := r.storage.pool.QueryRow(ctx, query, login).Scan(&m.ID, &m.Login, &m.PasswordHash, &m.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return &m, nil
}

func (r *merchantRepository) GetByID(ctx context.Context, id int64) (*model.Merchant, error) {
	const query = `SELECT id, login, password_hash, created_at FROM merchants WHERE id=$1`
	var m model.Merchant
	err := r.storage.pool.QueryRow(ctx, query, id).Scan(&m.ID, &m.Login, &m.PasswordHash, &m.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return &m, nil
}

// --- OrderRepository implementation ---

const orderColumns = `o.id, o.merchant_id, o.number, o.amount, o.receiver_email, o.description, o.status, o.created_at, o.updated_at, o.paid_at`

func scanOrder(row pgx.Row) (*model.Order, error) {
	var o model.Order
	err := row.Scan(&o.ID, &o.MerchantID, &o.Number, &o.Amount, &o.ReceiverEmail, &o.Description, &o.Status, &o.CreatedAt, &o.UpdatedAt, &o.PaidAt)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *orderRepository) Create(ctx context.Context, draft model.OrderDraft) (*model.Order, bool, error) {
	const query = `INSERT INTO orders (merchant_id, number, amount, receiver_email, description, status)
                   VALUES ($1, $2, $3, $4, $5, $6)
                   ON CONFLICT (merchant_id, number) DO NOTHING
                   RETURNING id, status, created_at, updated_at`
	var order model.Order
	err := r.storage.pool.QueryRow(ctx, query,
		draft.MerchantID, draft.Number, draft.Amount, draft.ReceiverEmail, draft.Description, model.OrderStatusPending,
	).Scan(&order.ID, &order.Status, &order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			existing, err := r.GetByNumber(ctx, draft.MerchantID, draft.Number)
			if err != nil {
				return nil, false, err
			}
			return existing, false, nil
		}
		return nil, false, err
	}
	order.MerchantID = draft.MerchantID
	order.Number = draft.Number
	order.Amount = draft.Amount
	order.ReceiverEmail = draft.ReceiverEmail
	order.Description = draft.Description
	return &order, true, nil
}

func (r *orderRepository) GetByNumber(ctx context.Context, merchantID int64, number string) (*model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders o WHERE o.merchant_id=$1 AND o.number=$2`
	order, err := scanOrder(r.storage.pool.QueryRow(ctx, query, merchantID, number))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	if err := r.loadInvoice(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

func (r *orderRepository) GetByInvoiceID(ctx context.Context, invoiceID string) (*model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders o
              JOIN invoices i ON i.order_id = o.id
              WHERE i.invoice_id=$1`
	order, err := scanOrder(r.storage.pool.QueryRow(ctx, query, invoiceID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	if err := r.loadInvoice(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

func (r *orderRepository) ListByMerchant(ctx context.Context, merchantID int64) ([]model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders o WHERE o.merchant_id=$1 ORDER BY o.created_at DESC`
	rows, err := r.storage.pool.Query(ctx, query, merchantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *order)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *orderRepository) loadInvoice(ctx context.Context, order *model.Order) error {
	const query = `SELECT order_id, invoice_id, payment_ref, qr_image, qr_text, deeplinks, created_at
                   FROM invoices WHERE order_id=$1`
	var (
		inv       model.Invoice
		deeplinks []byte
	)
	err := r.storage.pool.QueryRow(ctx, query, order.ID).Scan(
		&inv.OrderID, &inv.InvoiceID, &inv.PaymentRef, &inv.QRImage, &inv.QRText, &deeplinks, &inv.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		return err
	}
	if len(deeplinks) > 0 {
		if err := json.Unmarshal(deeplinks, &inv.Deeplinks); err != nil {
			return fmt.Errorf("decode deeplinks: %w", err)
		}
	}
	order.Invoice = &inv
	return nil
}

func (r *orderRepository) AttachInvoice(ctx context.Context, orderID int64, invoice *model.Invoice) error {
	deeplinks, err := json.Marshal(invoice.Deeplinks)
	if err != nil {
		return fmt.Errorf("encode deeplinks: %w", err)
	}
	if invoice.Deeplinks == nil {
		deeplinks = []byte("[]")
	}

	return r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		const upsert = `INSERT INTO invoices (order_id, invoice_id, payment_ref, qr_image, qr_text, deeplinks)
                        VALUES ($1, $2, $3, $4, $5, $6)
                        ON CONFLICT (order_id) DO UPDATE
                        SET invoice_id = EXCLUDED.invoice_id,
                            payment_ref = EXCLUDED.payment_ref,
                            qr_image = EXCLUDED.qr_image,
                            qr_text = EXCLUDED.qr_text,
                            deeplinks = EXCLUDED.deeplinks,
                            created_at = NOW()`
		if _, err := tx.Exec(ctx, upsert, orderID, invoice.InvoiceID, invoice.PaymentRef, invoice.QRImage, invoice.QRText, deeplinks); err != nil {
			return err
		}

		const transition = `UPDATE orders SET status=$1, updated_at=NOW() WHERE id=$2 AND status <> $3`
		if _, err := tx.Exec(ctx, transition, model.OrderStatusAwaitingPayment, orderID, model.OrderStatusPaid); err != nil {
			return err
		}
		return nil
	})
}

func (r *orderRepository) MarkPaid(ctx context.Context, orderID int64, note string) (changed bool, err error) {
	err = r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		const transition = `UPDATE orders SET status=$1, paid_at=NOW(), updated_at=NOW()
                            WHERE id=$2 AND status=$3`
		tag, err := tx.Exec(ctx, transition, model.OrderStatusPaid, orderID, model.OrderStatusAwaitingPayment)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return nil
		}
		changed = true

		const insertNote = `INSERT INTO order_notes (order_id, note) VALUES ($1, $2)`
		if _, err := tx.Exec(ctx, insertNote, orderID, note); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	return changed, nil
}

func (r *orderRepository) SelectAwaitingPayment(ctx context.Context, limit int) ([]model.Order, error) {
	query := `SELECT ` + orderColumns + `, i.invoice_id, i.payment_ref
              FROM orders o
              JOIN invoices i ON i.order_id = o.id
              WHERE o.status=$1
              ORDER BY o.updated_at
              LIMIT $2`
	rows, err := r.storage.pool.Query(ctx, query, model.OrderStatusAwaitingPayment, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.Order
	for rows.Next() {
		var (
			o   model.Order
			inv model.Invoice
		)
		err := rows.Scan(&o.ID, &o.MerchantID, &o.Number, &o.Amount, &o.ReceiverEmail, &o.Description, &o.Status,
			&o.CreatedAt, &o.UpdatedAt, &o.PaidAt, &inv.InvoiceID, &inv.PaymentRef)
		if err != nil {
			return nil, err
		}
		inv.OrderID = o.ID
		o.Invoice = &inv
		result = append(result, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// WithinTransaction executes function inside transaction boundary.
func (s *Storage) WithinTransaction(ctx context.Context, fn func(pgx.Tx) error) (err error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			err = tx.Commit(ctx)
		}
	}()

	err = fn(tx)
	return err
}

// HealthCheck verifies database connectivity.
func (s *Storage) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return s.pool.Ping(ctx)
}
