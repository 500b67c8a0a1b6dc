package model

import "github.com/shopspring/decimal"

// CartLineItem is one (product, size, quantity) entry in a cart. The product is
// stored as a full snapshot taken when the item was added.
type CartLineItem struct {
	Product  Product `json:"product"`
	Size     int     `json:"size"`
	Quantity int     `json:"quantity"`
}

// Matches reports whether the line item is keyed by productID and size.
func (i CartLineItem) Matches(productID string, size int) bool {
	return i.Product.ID == productID && i.Size == size
}

// Subtotal returns unit price times quantity.
func (i CartLineItem) Subtotal() decimal.Decimal {
	return i.Product.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// CartResponse is the cart as exposed over HTTP.
type CartResponse struct {
	Items     []CartLineItem  `json:"items"`
	Total     decimal.Decimal `json:"total"`
	ItemCount int             `json:"itemCount"`
	IsOpen    bool            `json:"isOpen"`
}

// CartItemRequest is the request body for adding or updating a cart line.
type CartItemRequest struct {
	ProductID string `json:"productId"`
	Size      int    `json:"size"`
	Quantity  int    `json:"quantity"`
}
