package token

import (
	"context"
	"time"
)

// Kinds of issued tokens. Admin tokens unlock the /admin routes.
const (
	KindAccess = "access"
	KindAdmin  = "admin"
)

type Token struct {
	Token      string
	CustomerID string
	Kind       string
	ExpiresAt  time.Time
	CreatedAt  time.Time
}

type Repository interface {
	Create(ctx context.Context, token Token) error
	Get(ctx context.Context, token string) (*Token, error)
	Delete(ctx context.Context, token string) error
}
