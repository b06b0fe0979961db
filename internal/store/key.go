package store

import (
	"context"
	"errors"
)

// Key binds a Store to a single well-known key, exposing only get, set,
// and clear on it
type Key struct {
	store Store
	name  string
}

// NewKey returns a Key for name in s
func NewKey(s Store, name string) *Key {
	return &Key{store: s, name: name}
}

// Name returns the bound key name
func (k *Key) Name() string {
	return k.name
}

// Get returns the stored value, or an empty string if none is stored
func (k *Key) Get(ctx context.Context) (string, error) {
	v, err := k.store.Get(ctx, k.name)
	if errors.Is(err, ErrNotFound) {
		return "", nil
	}
	return v, err
}

// Set stores value under the bound key
func (k *Key) Set(ctx context.Context, value string) error {
	return k.store.Set(ctx, k.name, value)
}

// Clear removes the bound key
func (k *Key) Clear(ctx context.Context) error {
	return k.store.Delete(ctx, k.name)
}
