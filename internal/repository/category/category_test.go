package category

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"

	"storefront/internal/domain"
	"storefront/internal/migrate"
)

func TestPostgres_UpsertAndList(t *testing.T) {
	ctx := context.Background()
	pool := testPool(ctx, t)
	defer pool.Close()

	if err := migrate.Apply(ctx, pool); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	resetTables(ctx, t, pool)

	repo := NewPostgres(pool)
	cat, err := repo.Upsert(ctx, domain.Category{Key: "cat-1", Name: "Cat 1", Slug: "cat-1"})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if cat.ID == "" || cat.Key != "cat-1" {
		t.Fatalf("unexpected category %+v", cat)
	}

	renamed, err := repo.Upsert(ctx, domain.Category{Key: "cat-1", Name: "Renamed"})
	if err != nil {
		t.Fatalf("upsert again: %v", err)
	}
	if renamed.ID != cat.ID || renamed.Slug != "cat-1" {
		t.Fatalf("expected same id and kept slug, got %+v", renamed)
	}

	list, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || list[0].Name != "Renamed" {
		t.Fatalf("unexpected list %+v", list)
	}
}

func testPool(ctx context.Context, t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN not set")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		t.Skipf("db not reachable: %v", err)
	}
	return pool
}

func resetTables(ctx context.Context, t *testing.T, pool *pgxpool.Pool) {
	t.Helper()
	if _, err := pool.Exec(ctx, `TRUNCATE order_lines, orders, tokens, products, customers, categories RESTART IDENTITY CASCADE`); err != nil {
		t.Fatalf("truncate tables: %v", err)
	}
}
