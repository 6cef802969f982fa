package catalog

import (
	"context"
	"errors"
	"strings"

	"storefront/internal/domain"
	productrepo "storefront/internal/repository/product"
)

type Service struct {
	repo productrepo.Repository
}

func New(repo productrepo.Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context) ([]domain.Product, error) {
	return s.repo.List(ctx)
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Product, error) {
	return s.repo.GetByID(ctx, id)
}

// UpsertInput captures admin product writes.
type UpsertInput struct {
	ID            string `json:"id"`
	SKU           string `json:"sku"`
	Name          string `json:"name"`
	Description   string `json:"description"`
	PriceCents    int64  `json:"priceCents"`
	Currency      string `json:"currency"`
	StockQuantity int    `json:"stockQuantity"`
	CategoryID    string `json:"categoryId"`
}

func (s *Service) Upsert(ctx context.Context, in UpsertInput) (*domain.Product, error) {
	if strings.TrimSpace(in.SKU) == "" {
		return nil, errors.New("sku required")
	}
	if strings.TrimSpace(in.Name) == "" {
		return nil, errors.New("name required")
	}
	if in.PriceCents < 0 {
		return nil, errors.New("price must not be negative")
	}
	if in.StockQuantity < 0 {
		return nil, errors.New("stock must not be negative")
	}
	currency := strings.ToUpper(strings.TrimSpace(in.Currency))
	if currency == "" {
		currency = "USD"
	}
	return s.repo.Upsert(ctx, domain.Product{
		ID:            in.ID,
		SKU:           strings.TrimSpace(in.SKU),
		Name:          strings.TrimSpace(in.Name),
		Description:   in.Description,
		PriceCents:    in.PriceCents,
		Currency:      currency,
		StockQuantity: in.StockQuantity,
		CategoryID:    in.CategoryID,
	})
}

// Restock adds quantity back to a product, the administrative correction
// counterpart of the checkout decrement.
func (s *Service) Restock(ctx context.Context, id string, qty int) error {
	if qty <= 0 {
		return errors.New("quantity must be positive")
	}
	return s.repo.IncrementStock(ctx, id, qty)
}
