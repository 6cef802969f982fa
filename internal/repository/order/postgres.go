package order

import (
	"context"
	"errors"
	"io"
	"log"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"storefront/internal/domain"
)

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *log.Logger
}

func NewPostgres(pool *pgxpool.Pool, logger *log.Logger) Repository {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &postgresRepo{pool: pool, logger: logger}
}

func (r *postgresRepo) Create(ctx context.Context, order domain.Order) (*domain.Order, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	const insertOrder = `
INSERT INTO orders (buyer_id, amount_cents, currency, transaction_id, status)
VALUES ($1, $2, $3, $4, $5)
RETURNING id::text, created_at, updated_at
`
	out := order
	if out.Status == "" {
		out.Status = domain.StatusNotProcessed
	}
	if err := tx.QueryRow(ctx, insertOrder,
		order.BuyerID,
		order.AmountCents,
		order.Currency,
		order.TransactionID,
		out.Status,
	).Scan(&out.ID, &out.CreatedAt, &out.UpdatedAt); err != nil {
		r.logger.Printf("order repo: create buyer_id=%s error=%v", order.BuyerID, err)
		return nil, err
	}

	const insertLine = `
INSERT INTO order_lines (order_id, product_id, sku, name, unit_price_cents, quantity)
VALUES ($1, $2, $3, $4, $5, $6)
`
	for _, line := range order.Lines {
		if _, err := tx.Exec(ctx, insertLine, out.ID, line.ProductID, line.SKU, line.Name, line.UnitPriceCents, line.Quantity); err != nil {
			r.logger.Printf("order repo: create line order_id=%s product_id=%s error=%v", out.ID, line.ProductID, err)
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	r.logger.Printf("order repo: created id=%s buyer_id=%s amount_cents=%d", out.ID, out.BuyerID, out.AmountCents)
	return &out, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	const q = `
SELECT id::text, buyer_id::text, amount_cents, currency, transaction_id, status, created_at, updated_at
FROM orders
WHERE id = $1
`
	var o domain.Order
	err := r.pool.QueryRow(ctx, q, id).Scan(&o.ID, &o.BuyerID, &o.AmountCents, &o.Currency, &o.TransactionID, &o.Status, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	lines, err := r.fetchLines(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	o.Lines = lines
	return &o, nil
}

func (r *postgresRepo) ListByBuyer(ctx context.Context, buyerID string) ([]domain.Order, error) {
	const q = `
SELECT id::text, buyer_id::text, amount_cents, currency, transaction_id, status, created_at, updated_at
FROM orders
WHERE buyer_id = $1
ORDER BY created_at DESC
`
	rows, err := r.pool.Query(ctx, q, buyerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Order
	for rows.Next() {
		var o domain.Order
		if err := rows.Scan(&o.ID, &o.BuyerID, &o.AmountCents, &o.Currency, &o.TransactionID, &o.Status, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range result {
		lines, err := r.fetchLines(ctx, result[i].ID)
		if err != nil {
			return nil, err
		}
		result[i].Lines = lines
	}
	return result, nil
}

func (r *postgresRepo) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) (*domain.Order, error) {
	const q = `
UPDATE orders
SET status = $2,
    updated_at = now()
WHERE id = $1
RETURNING id::text
`
	var updated string
	if err := r.pool.QueryRow(ctx, q, id, status).Scan(&updated); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.logger.Printf("order repo: update status id=%s status=%s error=%v", id, status, err)
		return nil, err
	}
	return r.GetByID(ctx, updated)
}

func (r *postgresRepo) fetchLines(ctx context.Context, orderID string) ([]domain.OrderLine, error) {
	const q = `
SELECT product_id::text, COALESCE(sku, ''), COALESCE(name, ''), unit_price_cents, quantity
FROM order_lines
WHERE order_id = $1
ORDER BY id ASC
`
	rows, err := r.pool.Query(ctx, q, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []domain.OrderLine
	for rows.Next() {
		var l domain.OrderLine
		if err := rows.Scan(&l.ProductID, &l.SKU, &l.Name, &l.UnitPriceCents, &l.Quantity); err != nil {
			return nil, err
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}
