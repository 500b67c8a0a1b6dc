package service

import (
	"context"

	"cresshoe/internal/cart"
	"cresshoe/internal/model"

	"github.com/google/uuid"
)

// ProductService defines read operations over the catalogue.
type ProductService interface {
	// List returns the products matching filters.
	List(ctx context.Context, filters *model.ProductFilters) (*model.ProductsResponse, error)

	// GetBySlug retrieves a single product, or nil when it does not exist.
	GetBySlug(ctx context.Context, slug string) (*model.Product, error)

	// BestSellers returns best-selling products, at most limit when limit > 0.
	BestSellers(ctx context.Context, limit int) ([]model.Product, error)

	// NewArrivals returns new products, at most limit when limit > 0.
	NewArrivals(ctx context.Context, limit int) ([]model.Product, error)
}

// CartService validates storefront cart requests against the catalogue before
// mutating a session's cart.
type CartService interface {
	// View returns the current cart contents and totals.
	View(store *cart.Store) *model.CartResponse

	// AddItem adds a catalogue product in the requested size.
	AddItem(ctx context.Context, store *cart.Store, req *model.CartItemRequest) (*model.CartResponse, error)

	// UpdateItem sets the quantity of a line. Zero or less removes it.
	UpdateItem(ctx context.Context, store *cart.Store, req *model.CartItemRequest) (*model.CartResponse, error)

	// RemoveItem removes a line if present.
	RemoveItem(ctx context.Context, store *cart.Store, productID string, size int) *model.CartResponse

	// Clear empties the cart.
	Clear(ctx context.Context, store *cart.Store) *model.CartResponse

	// SetOpen shows or hides the cart.
	SetOpen(store *cart.Store, open bool) *model.CartResponse
}

// OrderService defines operations for the order intake endpoint.
type OrderService interface {
	// CreateOrder validates and stores a submitted order and returns its reference.
	CreateOrder(ctx context.Context, payload *model.OrderPayload) (*model.IntakeResponse, error)

	// GetByID retrieves an order with its lines, or nil when it does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*model.OrderResponse, error)
}
