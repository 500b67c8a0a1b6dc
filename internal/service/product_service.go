package service

import (
	"context"
	"errors"
	"fmt"

	"cresshoe/internal/catalog"
	"cresshoe/internal/model"

	"github.com/rs/zerolog"
)

const maxCollectionLimit = 50

// productService implements ProductService.
type productService struct {
	catalog catalog.Lookup
	logger  zerolog.Logger
}

// NewProductService creates a new product service.
func NewProductService(lookup catalog.Lookup, logger zerolog.Logger) ProductService {
	return &productService{
		catalog: lookup,
		logger:  logger.With().Str("service", "product").Logger(),
	}
}

// List returns the products matching filters.
func (s *productService) List(ctx context.Context, filters *model.ProductFilters) (*model.ProductsResponse, error) {
	resp, err := s.catalog.Products(ctx, filters)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list products")
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	s.logger.Debug().Int("count", resp.Total).Msg("listed products")

	return resp, nil
}

// GetBySlug retrieves a single product by slug.
func (s *productService) GetBySlug(ctx context.Context, slug string) (*model.Product, error) {
	if slug == "" {
		s.logger.Warn().Msg("product slug is empty")
		return nil, nil
	}

	product, err := s.catalog.BySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, model.ErrProductNotFound) {
			s.logger.Debug().Str("slug", slug).Msg("product not found")
			return nil, nil
		}
		s.logger.Error().Err(err).Str("slug", slug).Msg("failed to get product")
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	return product, nil
}

// BestSellers returns best-selling products.
func (s *productService) BestSellers(ctx context.Context, limit int) ([]model.Product, error) {
	products, err := s.catalog.BestSellers(ctx, clampLimit(limit))
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to get best sellers")
		return nil, fmt.Errorf("failed to get best sellers: %w", err)
	}
	return products, nil
}

// NewArrivals returns new products.
func (s *productService) NewArrivals(ctx context.Context, limit int) ([]model.Product, error) {
	products, err := s.catalog.NewArrivals(ctx, clampLimit(limit))
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to get new arrivals")
		return nil, fmt.Errorf("failed to get new arrivals: %w", err)
	}
	return products, nil
}

func clampLimit(limit int) int {
	if limit <= 0 || limit > maxCollectionLimit {
		return maxCollectionLimit
	}
	return limit
}
