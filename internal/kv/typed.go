package kv

import (
	"context"
	"encoding/json"
	"fmt"
)

// Doc provides typed JSON access to a single key of a Store.
type Doc[T any] struct {
	store Store
	key   string
}

// JSON returns a Doc[T] bound to key.
func JSON[T any](store Store, key string) *Doc[T] {
	return &Doc[T]{store: store, key: key}
}

// Key returns the underlying storage key.
func (d *Doc[T]) Key() string { return d.key }

// Load reads and decodes the value. A missing key yields the zero value and
// ok=false. Read or decode failures also yield the zero value, with the error
// so callers can log it before treating the value as absent.
func (d *Doc[T]) Load(ctx context.Context) (T, bool, error) {
	var v T
	raw, ok, err := d.store.Get(ctx, d.key)
	if err != nil {
		return v, false, fmt.Errorf("kv get %q: %w", d.key, err)
	}
	if !ok || raw == "" {
		return v, false, nil
	}
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		var zero T
		return zero, false, fmt.Errorf("kv get %q unmarshal: %w", d.key, err)
	}
	return v, true, nil
}

// Save encodes and stores v.
func (d *Doc[T]) Save(ctx context.Context, v T) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("kv set %q marshal: %w", d.key, err)
	}
	if err := d.store.Set(ctx, d.key, string(data)); err != nil {
		return fmt.Errorf("kv set %q: %w", d.key, err)
	}
	return nil
}

// Remove deletes the key.
func (d *Doc[T]) Remove(ctx context.Context) error {
	if err := d.store.Remove(ctx, d.key); err != nil {
		return fmt.Errorf("kv remove %q: %w", d.key, err)
	}
	return nil
}
