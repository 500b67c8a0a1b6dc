package catalog

import (
	"context"
	"fmt"
	"strings"

	"cresshoe/internal/model"

	"github.com/rs/zerolog"
)

// staticCatalog serves lookups from an immutable product slice.
type staticCatalog struct {
	products []model.Product
	byID     map[string]int
	bySlug   map[string]int
	logger   zerolog.Logger
}

// New loads the catalogue at path through loader and returns a Lookup over it.
func New(ctx context.Context, loader Loader, path string, logger zerolog.Logger) (Lookup, error) {
	products, err := loader.Load(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalogue: %w", err)
	}
	return NewStatic(products, logger), nil
}

// NewStatic returns a Lookup over products. The slice is copied.
func NewStatic(products []model.Product, logger zerolog.Logger) Lookup {
	c := &staticCatalog{
		products: append([]model.Product(nil), products...),
		byID:     make(map[string]int, len(products)),
		bySlug:   make(map[string]int, len(products)),
		logger:   logger.With().Str("component", "catalog").Logger(),
	}
	for i, p := range c.products {
		c.byID[p.ID] = i
		if p.Slug != "" {
			c.bySlug[p.Slug] = i
		}
	}
	return c
}

// Products filters the catalogue. All products are returned as a single page.
func (c *staticCatalog) Products(ctx context.Context, filters *model.ProductFilters) (*model.ProductsResponse, error) {
	matched := make([]model.Product, 0, len(c.products))
	for _, p := range c.products {
		if matches(&p, filters) {
			matched = append(matched, p)
		}
	}

	c.logger.Debug().
		Int("matched", len(matched)).
		Int("catalogue_size", len(c.products)).
		Msg("catalogue query")

	return &model.ProductsResponse{
		Products: matched,
		Total:    len(matched),
		Page:     1,
		Limit:    len(matched),
	}, nil
}

// BySlug returns the product with slug.
func (c *staticCatalog) BySlug(ctx context.Context, slug string) (*model.Product, error) {
	i, ok := c.bySlug[slug]
	if !ok {
		return nil, model.ErrProductNotFound
	}
	p := c.products[i]
	return &p, nil
}

// ByID returns the product with id.
func (c *staticCatalog) ByID(ctx context.Context, id string) (*model.Product, error) {
	i, ok := c.byID[id]
	if !ok {
		return nil, model.ErrProductNotFound
	}
	p := c.products[i]
	return &p, nil
}

// BestSellers returns best sellers in catalogue order.
func (c *staticCatalog) BestSellers(ctx context.Context, limit int) ([]model.Product, error) {
	yes := true
	return c.limited(ctx, &model.ProductFilters{IsBestSeller: &yes}, limit)
}

// NewArrivals returns new products in catalogue order.
func (c *staticCatalog) NewArrivals(ctx context.Context, limit int) ([]model.Product, error) {
	yes := true
	return c.limited(ctx, &model.ProductFilters{IsNew: &yes}, limit)
}

// ByCategory returns the products listed under category.
func (c *staticCatalog) ByCategory(ctx context.Context, category model.Category) ([]model.Product, error) {
	return c.limited(ctx, &model.ProductFilters{Category: category}, 0)
}

func (c *staticCatalog) limited(ctx context.Context, filters *model.ProductFilters, limit int) ([]model.Product, error) {
	resp, err := c.Products(ctx, filters)
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(resp.Products) > limit {
		return resp.Products[:limit], nil
	}
	return resp.Products, nil
}

// matches applies every set filter; they combine with AND.
func matches(p *model.Product, f *model.ProductFilters) bool {
	if f == nil {
		return true
	}
	if f.Category != "" && p.Category != f.Category {
		return false
	}
	if f.Brand != "" && !strings.EqualFold(p.Brand, f.Brand) {
		return false
	}
	if f.IsNew != nil && p.IsNew != *f.IsNew {
		return false
	}
	if f.IsBestSeller != nil && p.IsBestSeller != *f.IsBestSeller {
		return false
	}
	if f.MinPrice != nil && p.Price.LessThan(*f.MinPrice) {
		return false
	}
	if f.MaxPrice != nil && p.Price.GreaterThan(*f.MaxPrice) {
		return false
	}
	if f.Search != "" {
		return matchesSearch(p, strings.ToLower(f.Search))
	}
	return true
}

func matchesSearch(p *model.Product, term string) bool {
	if strings.Contains(strings.ToLower(p.Name), term) ||
		strings.Contains(strings.ToLower(p.Brand), term) {
		return true
	}
	for _, tag := range p.Tags {
		if strings.Contains(strings.ToLower(tag), term) {
			return true
		}
	}
	return false
}
