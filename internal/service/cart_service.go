package service

import (
	"context"
	"errors"
	"fmt"

	"cresshoe/internal/cart"
	"cresshoe/internal/catalog"
	"cresshoe/internal/model"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// cartService implements CartService.
type cartService struct {
	catalog         catalog.Lookup
	maxLineQuantity int
	logger          zerolog.Logger
}

// NewCartService creates a cart service. maxLineQuantity caps the quantity of
// any single line; zero or less disables the cap.
func NewCartService(lookup catalog.Lookup, maxLineQuantity int, logger zerolog.Logger) CartService {
	return &cartService{
		catalog:         lookup,
		maxLineQuantity: maxLineQuantity,
		logger:          logger.With().Str("service", "cart").Logger(),
	}
}

// View returns the current cart contents and totals.
func (s *cartService) View(store *cart.Store) *model.CartResponse {
	snap := store.Snapshot()
	resp := &model.CartResponse{
		Items:  snap.Items,
		Total:  decimal.Zero,
		IsOpen: snap.IsOpen,
	}
	if resp.Items == nil {
		resp.Items = []model.CartLineItem{}
	}
	for _, item := range snap.Items {
		resp.Total = resp.Total.Add(item.Subtotal())
		resp.ItemCount += item.Quantity
	}
	return resp
}

// AddItem adds a catalogue product in the requested size. A zero quantity
// means one.
func (s *cartService) AddItem(ctx context.Context, store *cart.Store, req *model.CartItemRequest) (*model.CartResponse, error) {
	quantity := req.Quantity
	if quantity == 0 {
		quantity = 1
	}
	if quantity < 0 {
		return nil, model.ErrInvalidQuantity
	}

	product, err := s.resolve(ctx, req.ProductID, req.Size)
	if err != nil {
		return nil, err
	}

	if !store.AddWithin(ctx, *product, req.Size, quantity, s.maxLineQuantity) {
		s.logger.Warn().
			Str("product_id", req.ProductID).
			Int("size", req.Size).
			Int("quantity", quantity).
			Msg("line quantity limit reached")
		return nil, model.ErrQuantityLimit
	}

	s.logger.Debug().
		Str("cart", store.Key()).
		Str("product_id", req.ProductID).
		Int("size", req.Size).
		Int("quantity", quantity).
		Msg("item added to cart")

	return s.View(store), nil
}

// UpdateItem sets the quantity of a line. Zero or less removes it.
func (s *cartService) UpdateItem(ctx context.Context, store *cart.Store, req *model.CartItemRequest) (*model.CartResponse, error) {
	if req.ProductID == "" {
		return nil, model.ErrProductNotFound
	}
	if s.exceedsLimit(req.Quantity) {
		return nil, model.ErrQuantityLimit
	}

	store.SetQuantity(ctx, req.ProductID, req.Size, req.Quantity)
	return s.View(store), nil
}

// RemoveItem removes a line if present.
func (s *cartService) RemoveItem(ctx context.Context, store *cart.Store, productID string, size int) *model.CartResponse {
	store.Remove(ctx, productID, size)
	return s.View(store)
}

// Clear empties the cart.
func (s *cartService) Clear(ctx context.Context, store *cart.Store) *model.CartResponse {
	store.Clear(ctx)
	return s.View(store)
}

// SetOpen shows or hides the cart.
func (s *cartService) SetOpen(store *cart.Store, open bool) *model.CartResponse {
	store.SetOpen(open)
	return s.View(store)
}

// resolve returns the product when size is one of its in-stock variants.
func (s *cartService) resolve(ctx context.Context, productID string, size int) (*model.Product, error) {
	if productID == "" {
		return nil, model.ErrProductNotFound
	}

	product, err := s.catalog.ByID(ctx, productID)
	if err != nil {
		if errors.Is(err, model.ErrProductNotFound) {
			s.logger.Warn().Str("product_id", productID).Msg("product not found")
			return nil, model.ErrProductNotFound
		}
		s.logger.Error().Err(err).Str("product_id", productID).Msg("failed to look up product")
		return nil, fmt.Errorf("failed to look up product: %w", err)
	}

	variant, ok := product.Variant(size)
	if !ok {
		s.logger.Warn().Str("product_id", productID).Int("size", size).Msg("size not offered")
		return nil, model.ErrInvalidSize
	}
	if !variant.InStock {
		s.logger.Warn().Str("product_id", productID).Int("size", size).Msg("size out of stock")
		return nil, model.ErrSizeOutOfStock
	}

	return product, nil
}

func (s *cartService) exceedsLimit(quantity int) bool {
	return s.maxLineQuantity > 0 && quantity > s.maxLineQuantity
}
