package token

import (
	"context"
	"time"
)

// Token is a short-lived session credential bound to a customer phone.
type Token struct {
	ID        string    `json:"id"`
	Phone     string    `json:"phone"`
	ExpiresAt time.Time `json:"expiresAt"`
	CreatedAt time.Time `json:"createdAt"`
}

type Repository interface {
	Create(ctx context.Context, t Token) error
	Get(ctx context.Context, id string) (*Token, error)
	Update(ctx context.Context, t Token) error
	Delete(ctx context.Context, id string) error
	ListIDs(ctx context.Context) ([]string, error)
}
