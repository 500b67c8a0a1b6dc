// Package cart holds the shopping cart state for a storefront session and keeps
// it durably recorded through a pluggable Persister.
package cart

import (
	"context"
	"fmt"

	"cresshoe/internal/model"
)

// DefaultNamespace is the key under which a single-session cart is persisted.
const DefaultNamespace = "whitelight_cart"

// Persister stores serialised cart records under a key.
type Persister interface {
	// Load returns the record stored under key, or nil with no error when no
	// record exists.
	Load(ctx context.Context, key string) ([]byte, error)

	// Save replaces the record stored under key.
	Save(ctx context.Context, key string, data []byte) error
}

// Snapshot is a point-in-time copy of a cart handed to subscribers.
type Snapshot struct {
	Items  []model.CartLineItem
	IsOpen bool
}

// PersistenceReadError reports a persisted cart that could not be read back. It
// is logged and the cart starts empty; it is never returned to callers.
type PersistenceReadError struct {
	Key string
	Err error
}

func (e *PersistenceReadError) Error() string {
	return fmt.Sprintf("failed to read persisted cart %q: %v", e.Key, e.Err)
}

func (e *PersistenceReadError) Unwrap() error {
	return e.Err
}
