package seed

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"
)

type productSeed struct {
	SKU         string
	Name        string
	Description string
	PriceCents  int64
	Currency    string
	Stock       int
	CategoryKey string
}

// Apply inserts basic seed data for manual testing. It is idempotent via ON CONFLICT.
func Apply(ctx context.Context, pool *pgxpool.Pool) error {
	categories := map[string]string{
		"apparel": "Apparel",
		"kitchen": "Kitchen",
	}
	categoryIDs := make(map[string]string, len(categories))
	for key, name := range categories {
		id, err := ensureCategory(ctx, pool, key, name)
		if err != nil {
			return fmt.Errorf("ensure category %s: %w", key, err)
		}
		categoryIDs[key] = id
	}

	products := []productSeed{
		{
			SKU:         "SKU-DEMO-TSHIRT",
			Name:        "Demo T-Shirt",
			Description: "Soft cotton tee for demo purposes",
			PriceCents:  1999,
			Currency:    "USD",
			Stock:       25,
			CategoryKey: "apparel",
		},
		{
			SKU:         "SKU-DEMO-MUG",
			Name:        "Demo Mug",
			Description: "Ceramic mug with demo logo",
			PriceCents:  1299,
			Currency:    "USD",
			Stock:       40,
			CategoryKey: "kitchen",
		},
	}

	for _, p := range products {
		if err := upsertProduct(ctx, pool, categoryIDs[p.CategoryKey], p); err != nil {
			return fmt.Errorf("upsert product %s: %w", p.SKU, err)
		}
	}

	if err := ensureAdmin(ctx, pool, "admin@example.com", "adminPass1"); err != nil {
		return fmt.Errorf("ensure admin: %w", err)
	}

	return nil
}

func ensureCategory(ctx context.Context, pool *pgxpool.Pool, key, name string) (string, error) {
	const q = `
INSERT INTO categories (key, name, slug)
VALUES ($1, $2, $1)
ON CONFLICT (key) DO UPDATE SET name = EXCLUDED.name
RETURNING id::text
`
	var id string
	err := pool.QueryRow(ctx, q, key, name).Scan(&id)
	return id, err
}

func upsertProduct(ctx context.Context, pool *pgxpool.Pool, categoryID string, p productSeed) error {
	const q = `
INSERT INTO products (sku, name, description, price_cents, currency, stock_quantity, category_id)
VALUES ($1, $2, NULLIF($3, ''), $4, $5, $6, NULLIF($7, '')::uuid)
ON CONFLICT (sku) DO UPDATE SET
    name = EXCLUDED.name,
    description = EXCLUDED.description,
    price_cents = EXCLUDED.price_cents,
    currency = EXCLUDED.currency,
    stock_quantity = EXCLUDED.stock_quantity,
    category_id = EXCLUDED.category_id
`
	_, err := pool.Exec(ctx, q, p.SKU, p.Name, p.Description, p.PriceCents, p.Currency, p.Stock, categoryID)
	return err
}

// ensureAdmin creates the demo admin account and a long-lived admin token row
// so the /admin routes are usable out of the box.
func ensureAdmin(ctx context.Context, pool *pgxpool.Pool, email, password string) error {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	const q = `
INSERT INTO customers (email, password_hash)
VALUES ($1, $2)
ON CONFLICT (email) DO NOTHING
RETURNING id::text
`
	var id string
	err = pool.QueryRow(ctx, q, email, string(hashed)).Scan(&id)
	if err != nil {
		// Row already existed; fetch its id.
		if err := pool.QueryRow(ctx, `SELECT id::text FROM customers WHERE email = $1`, email).Scan(&id); err != nil {
			return err
		}
	}

	const tq = `
INSERT INTO tokens (token, customer_id, kind, expires_at)
VALUES ('demo-admin-token', $1, 'admin', now() + interval '1 year')
ON CONFLICT (token) DO UPDATE SET expires_at = EXCLUDED.expires_at
`
	_, err = pool.Exec(ctx, tq, id)
	return err
}
