package basket

import (
	"context"
	"encoding/json"

	"pizzashack/internal/domain"
	"pizzashack/internal/store"
)

const collection = "basket"

// File persists baskets as flat JSON records.
type File struct {
	store *store.Store
}

func NewFile(st *store.Store) *File {
	return &File{store: st}
}

func (f *File) Create(ctx context.Context, b *domain.Basket) error {
	return f.store.Create(ctx, collection, b.ID, b)
}

// GetByID loads a record through the whitelisting constructor so a damaged
// file degrades to zeroed fields instead of failing the read.
func (f *File) GetByID(ctx context.Context, id string) (*domain.Basket, error) {
	var raw json.RawMessage
	if err := f.store.Read(ctx, collection, id, &raw); err != nil {
		return nil, err
	}
	return domain.BasketFromRecord(raw), nil
}

func (f *File) Update(ctx context.Context, b *domain.Basket) error {
	return f.store.Update(ctx, collection, b.ID, b)
}

func (f *File) Delete(ctx context.Context, id string) error {
	return f.store.Delete(ctx, collection, id)
}

func (f *File) ListIDs(ctx context.Context) ([]string, error) {
	return f.store.List(ctx, collection)
}
