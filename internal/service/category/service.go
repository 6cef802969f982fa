package category

import (
	"context"
	"errors"
	"strings"

	"storefront/internal/domain"
	"storefront/internal/repository/category"
)

type Service struct {
	repo category.Repository
}

func New(repo category.Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context) ([]domain.Category, error) {
	return s.repo.List(ctx)
}

func (s *Service) Upsert(ctx context.Context, c domain.Category) (*domain.Category, error) {
	if strings.TrimSpace(c.Key) == "" {
		return nil, errors.New("key required")
	}
	if strings.TrimSpace(c.Name) == "" {
		return nil, errors.New("name required")
	}
	return s.repo.Upsert(ctx, c)
}
