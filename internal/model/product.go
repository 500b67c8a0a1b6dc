package model

import "github.com/shopspring/decimal"

// Category is the footwear category a product is listed under.
type Category string

const (
	CategoryMen     Category = "men"
	CategoryWomen   Category = "women"
	CategoryUnisex  Category = "unisex"
	CategoryRunning Category = "running"
)

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryMen, CategoryWomen, CategoryUnisex, CategoryRunning:
		return true
	}
	return false
}

// ProductImage is one image in a product gallery.
type ProductImage struct {
	ID  string `json:"id"`
	URL string `json:"url"`
	Alt string `json:"alt"`
}

// ProductVariant is a purchasable size of a product.
type ProductVariant struct {
	ID      string `json:"id"`
	Size    int    `json:"size"`
	InStock bool   `json:"inStock"`
}

// Product represents a shoe in the catalogue.
type Product struct {
	ID            string           `json:"id"`
	Slug          string           `json:"slug"`
	Name          string           `json:"name"`
	Brand         string           `json:"brand"`
	Category      Category         `json:"category"`
	Price         decimal.Decimal  `json:"price"`
	OriginalPrice *decimal.Decimal `json:"originalPrice,omitempty"`
	Images        []ProductImage   `json:"images"`
	Variants      []ProductVariant `json:"variants"`
	Description   string           `json:"description"`
	Tags          []string         `json:"tags"`
	IsNew         bool             `json:"isNew,omitempty"`
	IsBestSeller  bool             `json:"isBestSeller,omitempty"`
	CreatedAt     string           `json:"createdAt"`
}

// HasDiscount reports whether the product carries an original price above its
// current price.
func (p *Product) HasDiscount() bool {
	return p.OriginalPrice != nil && p.OriginalPrice.GreaterThan(p.Price)
}

// Variant returns the variant with the given size, if any.
func (p *Product) Variant(size int) (ProductVariant, bool) {
	for _, v := range p.Variants {
		if v.Size == size {
			return v, true
		}
	}
	return ProductVariant{}, false
}

// ProductFilters narrows a catalogue query. Nil pointers mean "no filter".
type ProductFilters struct {
	Category     Category
	Brand        string
	MinPrice     *decimal.Decimal
	MaxPrice     *decimal.Decimal
	IsNew        *bool
	IsBestSeller *bool
	Search       string
}

// ProductsResponse is a page of catalogue results.
type ProductsResponse struct {
	Products []Product `json:"products"`
	Total    int       `json:"total"`
	Page     int       `json:"page"`
	Limit    int       `json:"limit"`
}
