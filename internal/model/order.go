package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CustomerFields holds the details a customer enters at checkout.
type CustomerFields struct {
	Name    string `json:"name" validate:"required"`
	Phone   string `json:"phone" validate:"required"`
	Email   string `json:"email,omitempty"`
	Address string `json:"address,omitempty"`
	Notes   string `json:"notes,omitempty"`
}

// OrderLine is a single line of a submitted order.
type OrderLine struct {
	ProductID   string          `json:"productId" validate:"required"`
	ProductName string          `json:"productName" validate:"required"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	Size        int             `json:"size" validate:"gt=0"`
	Quantity    int             `json:"quantity" validate:"gt=0"`
}

// Subtotal returns unit price times quantity.
func (l OrderLine) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// OrderPayload is a finalised order ready for transmission.
type OrderPayload struct {
	Name    string          `json:"name" validate:"required"`
	Phone   string          `json:"phone" validate:"required"`
	Email   string          `json:"email,omitempty"`
	Address string          `json:"address,omitempty"`
	Notes   string          `json:"notes,omitempty"`
	Lines   []OrderLine     `json:"lines" validate:"required,min=1,dive"`
	Total   decimal.Decimal `json:"total"`
}

// SubmitResult describes a successful order submission.
type SubmitResult struct {
	Channel        string `json:"channel"`
	OrderReference string `json:"orderReference,omitempty"`
	RedirectURL    string `json:"redirectUrl,omitempty"`
}

// IntakeResponse is the acknowledgement returned by the order intake endpoint.
type IntakeResponse struct {
	Success   bool   `json:"success"`
	Reference string `json:"reference,omitempty"`
	OrderID   string `json:"orderId,omitempty"`
	Message   string `json:"message,omitempty"`
}

// Order represents a stored customer order.
type Order struct {
	ID        uuid.UUID       `json:"id" db:"id"`
	Reference string          `json:"reference" db:"reference"`
	Name      string          `json:"name" db:"customer_name"`
	Phone     string          `json:"phone" db:"customer_phone"`
	Email     *string         `json:"email,omitempty" db:"customer_email"`
	Address   *string         `json:"address,omitempty" db:"delivery_address"`
	Notes     *string         `json:"notes,omitempty" db:"notes"`
	Total     decimal.Decimal `json:"total" db:"total"`
	CreatedAt time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time       `json:"updatedAt" db:"updated_at"`
}

// OrderItem represents a stored line item of an order.
type OrderItem struct {
	ID          uuid.UUID       `json:"-" db:"id"`
	OrderID     uuid.UUID       `json:"-" db:"order_id"`
	ProductID   string          `json:"productId" db:"product_id"`
	ProductName string          `json:"productName" db:"product_name"`
	UnitPrice   decimal.Decimal `json:"unitPrice" db:"unit_price"`
	Size        int             `json:"size" db:"size"`
	Quantity    int             `json:"quantity" db:"quantity"`
}

// OrderResponse represents the response payload for a stored order.
type OrderResponse struct {
	Order
	Items []OrderItem `json:"items"`
}
