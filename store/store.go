// Package store holds the cart, wishlist and auth state containers. Each container
// applies a pure reducer to its current state and then persists the result through a
// storage.State; the new state is only committed in memory once it has been saved.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"recipebox/store/storage"
)

// Storage keys, kept identical to the browser local-storage keys.
const (
	KeyCart     = "cart"
	KeyWishlist = "wishlist"
	KeyUser     = "user"
	KeyUsers    = "users"
)

// record reads and writes a JSON-encoded value of type T through a storage.State.
type record[T any] struct {
	name  string
	state storage.State
}

// load returns def when nothing has been stored yet.
func (r record[T]) load(ctx context.Context, def T) (T, error) {
	data, err := r.state.Load(ctx)
	if errors.Is(err, storage.ErrNotFound) {
		return def, nil
	}
	if err != nil {
		return def, fmt.Errorf("read %s: %w", r.name, err)
	}

	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return def, fmt.Errorf("parse %s: %w", r.name, err)
	}
	return v, nil
}

func (r record[T]) save(ctx context.Context, v T) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", r.name, err)
	}
	if err := r.state.Save(ctx, data); err != nil {
		return fmt.Errorf("write %s: %w", r.name, err)
	}
	return nil
}

func (r record[T]) clear(ctx context.Context) error {
	if err := r.state.Delete(ctx); err != nil {
		return fmt.Errorf("delete %s: %w", r.name, err)
	}
	return nil
}
