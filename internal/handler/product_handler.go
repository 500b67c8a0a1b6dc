package handler

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"cresshoe/internal/model"
	"cresshoe/internal/service"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// ProductHandler handles catalogue HTTP requests.
type ProductHandler struct {
	service service.ProductService
	logger  zerolog.Logger
}

// NewProductHandler creates a new product handler.
func NewProductHandler(service service.ProductService, logger zerolog.Logger) *ProductHandler {
	return &ProductHandler{
		service: service,
		logger:  logger.With().Str("handler", "product").Logger(),
	}
}

// List handles GET /api/products requests with optional filters.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, model.ErrCodeMethodNotAllowed, "method not allowed", h.logger)
		return
	}

	filters, msg := parseFilters(r.URL.Query())
	if msg != "" {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidFilter, msg, h.logger)
		return
	}

	products, err := h.service.List(r.Context(), filters)
	if err != nil {
		writeError(w, http.StatusInternalServerError, model.ErrCodeInternalError, "failed to retrieve products", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, products)
}

// GetBySlug handles GET /api/products/{slug} requests.
func (h *ProductHandler) GetBySlug(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, model.ErrCodeMethodNotAllowed, "method not allowed", h.logger)
		return
	}

	// Expecting path: /api/products/{slug}
	path := r.URL.Path
	if len(path) < len("/api/products/") {
		writeError(w, http.StatusBadRequest, model.ErrCodeMissingField, "product slug is required", h.logger)
		return
	}
	slug := path[len("/api/products/"):]

	if slug == "" {
		writeError(w, http.StatusBadRequest, model.ErrCodeMissingField, "product slug is required", h.logger)
		return
	}

	product, err := h.service.GetBySlug(r.Context(), slug)
	if err != nil {
		writeError(w, http.StatusInternalServerError, model.ErrCodeInternalError, "failed to retrieve product", h.logger)
		return
	}

	if product == nil {
		writeError(w, http.StatusNotFound, model.ErrCodeProductNotFound, "product not found", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, product)
}

// BestSellers handles GET /api/collections/best-sellers requests.
func (h *ProductHandler) BestSellers(w http.ResponseWriter, r *http.Request) {
	h.collection(w, r, h.service.BestSellers)
}

// NewArrivals handles GET /api/collections/new-arrivals requests.
func (h *ProductHandler) NewArrivals(w http.ResponseWriter, r *http.Request) {
	h.collection(w, r, h.service.NewArrivals)
}

func (h *ProductHandler) collection(w http.ResponseWriter, r *http.Request, fetch func(ctx context.Context, limit int) ([]model.Product, error)) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, model.ErrCodeMethodNotAllowed, "method not allowed", h.logger)
		return
	}

	limit := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		var err error
		limit, err = strconv.Atoi(limitStr)
		if err != nil {
			writeError(w, http.StatusBadRequest, model.ErrCodeInvalidFilter, "invalid limit parameter", h.logger)
			return
		}
	}

	products, err := fetch(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, model.ErrCodeInternalError, "failed to retrieve products", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, products)
}

// parseFilters reads catalogue filters from query parameters. A non-empty
// message describes the first malformed parameter.
func parseFilters(q url.Values) (*model.ProductFilters, string) {
	filters := &model.ProductFilters{
		Brand:  q.Get("brand"),
		Search: q.Get("search"),
	}

	if c := q.Get("category"); c != "" {
		category := model.Category(c)
		if !category.Valid() {
			return nil, "invalid category parameter"
		}
		filters.Category = category
	}

	var err error
	if filters.MinPrice, err = parsePrice(q.Get("minPrice")); err != nil {
		return nil, "invalid minPrice parameter"
	}
	if filters.MaxPrice, err = parsePrice(q.Get("maxPrice")); err != nil {
		return nil, "invalid maxPrice parameter"
	}
	if filters.IsNew, err = parseFlag(q.Get("isNew")); err != nil {
		return nil, "invalid isNew parameter"
	}
	if filters.IsBestSeller, err = parseFlag(q.Get("isBestSeller")); err != nil {
		return nil, "invalid isBestSeller parameter"
	}

	return filters, ""
}

func parsePrice(v string) (*decimal.Decimal, error) {
	if v == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func parseFlag(v string) (*bool, error) {
	if v == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return nil, err
	}
	return &b, nil
}
