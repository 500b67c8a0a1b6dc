// Package catalog provides read-only product lookups over a catalogue document
// loaded from local disk or S3.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"cresshoe/internal/model"
)

// Lookup defines read operations over the product catalogue.
type Lookup interface {
	// Products returns every product matching filters. A nil filter matches all.
	Products(ctx context.Context, filters *model.ProductFilters) (*model.ProductsResponse, error)

	// BySlug returns the product with the given slug or model.ErrProductNotFound.
	BySlug(ctx context.Context, slug string) (*model.Product, error)

	// ByID returns the product with the given id or model.ErrProductNotFound.
	ByID(ctx context.Context, id string) (*model.Product, error)

	// BestSellers returns best-selling products, at most limit when limit > 0.
	BestSellers(ctx context.Context, limit int) ([]model.Product, error)

	// NewArrivals returns new products, at most limit when limit > 0.
	NewArrivals(ctx context.Context, limit int) ([]model.Product, error)

	// ByCategory returns the products of one category.
	ByCategory(ctx context.Context, category model.Category) ([]model.Product, error)
}

// Loader reads a catalogue document.
type Loader interface {
	// Load reads the document at path and returns its products.
	Load(ctx context.Context, path string) ([]model.Product, error)
}

// document is the on-disk catalogue layout.
type document struct {
	Products []model.Product `json:"products"`
}

// decodeDocument parses a catalogue document and checks product invariants.
func decodeDocument(r io.Reader) ([]model.Product, error) {
	var doc document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode catalogue: %w", err)
	}

	seen := make(map[string]struct{}, len(doc.Products))
	for i, p := range doc.Products {
		if p.ID == "" {
			return nil, fmt.Errorf("product %d: id is required", i)
		}
		if _, dup := seen[p.ID]; dup {
			return nil, fmt.Errorf("product %s: duplicate id", p.ID)
		}
		seen[p.ID] = struct{}{}

		if p.Price.IsNegative() {
			return nil, fmt.Errorf("product %s: price must not be negative", p.ID)
		}
		if !p.Category.Valid() {
			return nil, fmt.Errorf("product %s: unknown category %q", p.ID, p.Category)
		}
	}

	return doc.Products, nil
}
