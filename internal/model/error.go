package model

import (
	"fmt"
	"strings"
)

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error   string   `json:"error"`
	Message string   `json:"message"`
	Fields  []string `json:"fields,omitempty"`
}

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON        = "INVALID_JSON"
	ErrCodeInvalidFilter      = "INVALID_FILTER"
	ErrCodeInvalidID          = "INVALID_ID"
	ErrCodeInvalidSession     = "INVALID_SESSION"
	ErrCodeMethodNotAllowed   = "METHOD_NOT_ALLOWED"
	ErrCodeMissingField       = "MISSING_FIELD"
	ErrCodeEmptyCart          = "EMPTY_CART"
	ErrCodeSubmissionFailed   = "SUBMISSION_FAILED"
	ErrCodeSubmissionInFlight = "SUBMISSION_IN_FLIGHT"
	ErrCodeProductNotFound    = "PRODUCT_NOT_FOUND"
	ErrCodeInvalidSize        = "INVALID_SIZE"
	ErrCodeSizeOutOfStock     = "SIZE_OUT_OF_STOCK"
	ErrCodeInvalidQuantity    = "INVALID_QUANTITY"
	ErrCodeQuantityLimit      = "QUANTITY_LIMIT"
	ErrCodeOrderNotFound      = "ORDER_NOT_FOUND"
	ErrCodeUnauthorised       = "UNAUTHORIZED"
	ErrCodeInternalError      = "INTERNAL_ERROR"
)

// Domain errors for business logic
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrEmptyCart          = NewDomainError(ErrCodeEmptyCart, "Cart is empty")
	ErrSubmissionInFlight = NewDomainError(ErrCodeSubmissionInFlight, "An order submission is already in progress")
	ErrProductNotFound    = NewDomainError(ErrCodeProductNotFound, "Product not found")
	ErrInvalidSize        = NewDomainError(ErrCodeInvalidSize, "Size is not offered for this product")
	ErrSizeOutOfStock     = NewDomainError(ErrCodeSizeOutOfStock, "Size is out of stock")
	ErrInvalidQuantity    = NewDomainError(ErrCodeInvalidQuantity, "Quantity must be greater than zero")
	ErrQuantityLimit      = NewDomainError(ErrCodeQuantityLimit, "Quantity exceeds the per-line limit")
	ErrOrderNotFound      = NewDomainError(ErrCodeOrderNotFound, "Order not found")
)

// ValidationError reports request fields that were left empty or are invalid.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("missing or invalid field(s): %s", strings.Join(e.Fields, ", "))
}

// SubmissionError reports a transport or acknowledgement failure while handing an
// order to a checkout channel. The cart is left untouched when it is returned.
type SubmissionError struct {
	Channel string
	Message string
	Err     error
}

func (e *SubmissionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s submission failed: %s: %v", e.Channel, e.Message, e.Err)
	}
	return fmt.Sprintf("%s submission failed: %s", e.Channel, e.Message)
}

func (e *SubmissionError) Unwrap() error {
	return e.Err
}
