package customer

import (
	"context"

	"pizzashack/internal/domain"
)

type Repository interface {
	Create(ctx context.Context, c domain.Customer) error
	GetByPhone(ctx context.Context, phone string) (*domain.Customer, error)
	Update(ctx context.Context, c domain.Customer) error
	Delete(ctx context.Context, phone string) error
}
