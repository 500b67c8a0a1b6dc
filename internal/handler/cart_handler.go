package handler

import (
	"net/http"
	"strconv"

	"cresshoe/internal/cart"
	"cresshoe/internal/model"
	"cresshoe/internal/service"

	"github.com/rs/zerolog"
)

// CartHandler handles cart HTTP requests for the session named by SessionHeader.
type CartHandler struct {
	carts   CartSessions
	service service.CartService
	logger  zerolog.Logger
}

// NewCartHandler creates a new cart handler.
func NewCartHandler(carts CartSessions, service service.CartService, logger zerolog.Logger) *CartHandler {
	return &CartHandler{
		carts:   carts,
		service: service,
		logger:  logger.With().Str("handler", "cart").Logger(),
	}
}

// Get handles GET /api/cart requests.
func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	store, ok := h.store(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, h.service.View(store))
}

// AddItem handles POST /api/cart/items requests.
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req model.CartItemRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", h.logger)
		return
	}

	store, ok := h.store(w, r)
	if !ok {
		return
	}

	resp, err := h.service.AddItem(r.Context(), store, &req)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// UpdateItem handles PATCH /api/cart/items requests.
func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	var req model.CartItemRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", h.logger)
		return
	}

	store, ok := h.store(w, r)
	if !ok {
		return
	}

	resp, err := h.service.UpdateItem(r.Context(), store, &req)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// RemoveItem handles DELETE /api/cart/items?productId=&size= requests.
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	productID := r.URL.Query().Get("productId")
	if productID == "" {
		writeError(w, http.StatusBadRequest, model.ErrCodeMissingField, "productId is required", h.logger)
		return
	}

	size, err := strconv.Atoi(r.URL.Query().Get("size"))
	if err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidSize, "invalid size parameter", h.logger)
		return
	}

	store, ok := h.store(w, r)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, h.service.RemoveItem(r.Context(), store, productID, size))
}

// Clear handles DELETE /api/cart requests.
func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	store, ok := h.store(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, h.service.Clear(r.Context(), store))
}

// Open handles POST /api/cart/open requests.
func (h *CartHandler) Open(w http.ResponseWriter, r *http.Request) {
	h.setOpen(w, r, true)
}

// Close handles POST /api/cart/close requests.
func (h *CartHandler) Close(w http.ResponseWriter, r *http.Request) {
	h.setOpen(w, r, false)
}

func (h *CartHandler) setOpen(w http.ResponseWriter, r *http.Request, open bool) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, model.ErrCodeMethodNotAllowed, "method not allowed", h.logger)
		return
	}

	store, ok := h.store(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, h.service.SetOpen(store, open))
}

func (h *CartHandler) store(w http.ResponseWriter, r *http.Request) (*cart.Store, bool) {
	id, ok := sessionID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidSession, "invalid session id", h.logger)
		return nil, false
	}
	return h.carts.Get(r.Context(), id), true
}
