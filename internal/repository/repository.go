package repository

import (
	"context"
	"errors"

	"cresshoe/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ErrDuplicateReference is returned by CreateOrder when another order already
// holds the reference.
var ErrDuplicateReference = errors.New("order reference already exists")

// OrderRepository defines the interface for order data access operations.
type OrderRepository interface {
	// BeginTx starts a new database transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)

	// CreateOrder inserts a new order within the provided transaction.
	CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error

	// CreateOrderItems inserts multiple order items within the provided transaction.
	CreateOrderItems(ctx context.Context, tx pgx.Tx, items []model.OrderItem) error

	// GetByID retrieves an order by its ID along with its items.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Order, []model.OrderItem, error)
}

// CartRepository stores serialised carts keyed by their namespace key.
// It satisfies cart.Persister.
type CartRepository interface {
	// Load returns the stored cart record, or nil when none exists.
	Load(ctx context.Context, key string) ([]byte, error)

	// Save upserts the cart record.
	Save(ctx context.Context, key string, data []byte) error
}
