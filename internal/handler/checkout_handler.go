package handler

import (
	"context"
	"net/http"

	"cresshoe/internal/checkout"
	"cresshoe/internal/model"

	"github.com/rs/zerolog"
)

// OrderSubmitter turns a cart into a transmitted order.
type OrderSubmitter interface {
	Submit(ctx context.Context, store checkout.CartStore, fields model.CustomerFields) (*model.SubmitResult, error)
}

// CheckoutHandler handles checkout HTTP requests.
type CheckoutHandler struct {
	carts     CartSessions
	submitter OrderSubmitter
	logger    zerolog.Logger
}

// NewCheckoutHandler creates a new checkout handler.
func NewCheckoutHandler(carts CartSessions, submitter OrderSubmitter, logger zerolog.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		carts:     carts,
		submitter: submitter,
		logger:    logger.With().Str("handler", "checkout").Logger(),
	}
}

// Submit handles POST /api/checkout requests. The session's cart is cleared
// and closed only when the order was handed over.
func (h *CheckoutHandler) Submit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, model.ErrCodeMethodNotAllowed, "method not allowed", h.logger)
		return
	}

	var fields model.CustomerFields
	if err := decodeJSON(w, r, &fields); err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", h.logger)
		return
	}

	id, ok := sessionID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidSession, "invalid session id", h.logger)
		return
	}

	result, err := h.submitter.Submit(r.Context(), h.carts.Get(r.Context(), id), fields)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, result)
}
