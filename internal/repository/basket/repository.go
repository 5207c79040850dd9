package basket

import (
	"context"

	"pizzashack/internal/domain"
)

type Repository interface {
	Create(ctx context.Context, b *domain.Basket) error
	GetByID(ctx context.Context, id string) (*domain.Basket, error)
	Update(ctx context.Context, b *domain.Basket) error
	Delete(ctx context.Context, id string) error
	ListIDs(ctx context.Context) ([]string, error)
}
