package product

import (
	"context"

	"storefront/internal/domain"
)

type Repository interface {
	List(ctx context.Context) ([]domain.Product, error)
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	Upsert(ctx context.Context, product domain.Product) (*domain.Product, error)
	// DecrementStock subtracts qty from the product's stock only when the
	// remaining stock covers it. Returns domain.ErrNotFound for an unknown id
	// and ErrInsufficientStock when the guard fails. Atomic per product row.
	DecrementStock(ctx context.Context, id string, qty int) error
	// IncrementStock adds qty back; used to compensate a failed reservation
	// and for administrative corrections.
	IncrementStock(ctx context.Context, id string, qty int) error
}
