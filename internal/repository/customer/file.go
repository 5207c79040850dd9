package customer

import (
	"context"

	"pizzashack/internal/domain"
	"pizzashack/internal/store"
)

const collection = "customer"

// File persists customers as flat JSON records keyed by phone.
type File struct {
	store *store.Store
}

func NewFile(st *store.Store) *File {
	return &File{store: st}
}

func (f *File) Create(ctx context.Context, c domain.Customer) error {
	return f.store.Create(ctx, collection, c.Phone, c)
}

func (f *File) GetByPhone(ctx context.Context, phone string) (*domain.Customer, error) {
	var c domain.Customer
	if err := f.store.Read(ctx, collection, phone, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (f *File) Update(ctx context.Context, c domain.Customer) error {
	return f.store.Update(ctx, collection, c.Phone, c)
}

func (f *File) Delete(ctx context.Context, phone string) error {
	return f.store.Delete(ctx, collection, phone)
}
