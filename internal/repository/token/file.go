package token

import (
	"context"

	"pizzashack/internal/store"
)

const collection = "token"

// File persists session tokens as flat JSON records.
type File struct {
	store *store.Store
}

func NewFile(st *store.Store) *File {
	return &File{store: st}
}

func (f *File) Create(ctx context.Context, t Token) error {
	return f.store.Create(ctx, collection, t.ID, t)
}

func (f *File) Get(ctx context.Context, id string) (*Token, error) {
	var t Token
	if err := f.store.Read(ctx, collection, id, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (f *File) Update(ctx context.Context, t Token) error {
	return f.store.Update(ctx, collection, t.ID, t)
}

func (f *File) Delete(ctx context.Context, id string) error {
	return f.store.Delete(ctx, collection, id)
}

func (f *File) ListIDs(ctx context.Context) ([]string, error) {
	return f.store.List(ctx, collection)
}
