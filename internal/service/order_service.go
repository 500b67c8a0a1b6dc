package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"cresshoe/internal/checkout"
	"cresshoe/internal/events"
	"cresshoe/internal/model"
	"cresshoe/internal/repository"
	"cresshoe/internal/validation"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const (
	// ReferencePrefix starts every human-presentable order reference.
	ReferencePrefix = "CS-"

	// maxReferenceAttempts bounds retries after a reference collision.
	maxReferenceAttempts = 3
)

// orderService implements OrderService.
type orderService struct {
	orderRepo repository.OrderRepository
	publisher events.Publisher
	validate  *validator.Validate
	logger    zerolog.Logger
}

// NewOrderService creates a new order intake service.
func NewOrderService(
	orderRepo repository.OrderRepository,
	publisher events.Publisher,
	logger zerolog.Logger,
) OrderService {
	return &orderService{
		orderRepo: orderRepo,
		publisher: publisher,
		validate:  validation.New(),
		logger:    logger.With().Str("service", "order").Logger(),
	}
}

// CreateOrder validates the payload, stores the order and its lines in one
// transaction and publishes an order.created event.
func (s *orderService) CreateOrder(ctx context.Context, payload *model.OrderPayload) (*model.IntakeResponse, error) {
	if payload == nil {
		return nil, fmt.Errorf("order payload is nil")
	}

	normalised := *payload
	normalised.Name = strings.TrimSpace(payload.Name)
	normalised.Phone = checkout.NormalizePhone(payload.Phone)

	if err := s.validateOrderPayload(&normalised); err != nil {
		s.logger.Warn().Err(err).Msg("invalid order payload")
		return nil, err
	}

	total := decimal.Zero
	for _, line := range normalised.Lines {
		total = total.Add(line.Subtotal())
	}
	if !normalised.Total.IsZero() && !normalised.Total.Equal(total) {
		s.logger.Warn().
			Str("submitted_total", normalised.Total.String()).
			Str("computed_total", total.String()).
			Msg("submitted total differs from line total, using line total")
	}

	var (
		order *model.Order
		items []model.OrderItem
		err   error
	)
	for attempt := 1; attempt <= maxReferenceAttempts; attempt++ {
		order, items, err = s.storeOrder(ctx, &normalised, total)
		if !errors.Is(err, repository.ErrDuplicateReference) {
			break
		}
		s.logger.Warn().Int("attempt", attempt).Msg("order reference collision, retrying with a new id")
	}
	if err != nil {
		return nil, err
	}

	// The order is stored; a lost event is logged and not surfaced.
	if pubErr := s.publisher.PublishOrderCreated(ctx, order, items); pubErr != nil {
		s.logger.Error().Err(pubErr).Str("order_id", order.ID.String()).Msg("failed to publish order event")
	}

	s.logger.Info().
		Str("order_id", order.ID.String()).
		Str("reference", order.Reference).
		Int("item_count", len(items)).
		Str("total", total.String()).
		Msg("order created successfully")

	return &model.IntakeResponse{
		Success:   true,
		Reference: order.Reference,
		OrderID:   order.ID.String(),
	}, nil
}

// storeOrder writes the order and its lines in one transaction under a fresh
// id and reference.
func (s *orderService) storeOrder(ctx context.Context, normalised *model.OrderPayload, total decimal.Decimal) (order *model.Order, items []model.OrderItem, err error) {
	// Start transaction
	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, nil, fmt.Errorf("failed to create order: %w", err)
	}

	// Ensure transaction is rolled back on error
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	now := time.Now().UTC()
	order = &model.Order{
		ID:        uuid.New(),
		Name:      normalised.Name,
		Phone:     normalised.Phone,
		Email:     optional(normalised.Email),
		Address:   optional(normalised.Address),
		Notes:     optional(normalised.Notes),
		Total:     total,
		CreatedAt: now,
		UpdatedAt: now,
	}
	order.Reference = ReferenceFor(order.ID)

	if err = s.orderRepo.CreateOrder(ctx, tx, order); err != nil {
		s.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to create order")
		return nil, nil, fmt.Errorf("failed to create order: %w", err)
	}

	items = make([]model.OrderItem, len(normalised.Lines))
	for i, line := range normalised.Lines {
		items[i] = model.OrderItem{
			ID:          uuid.New(),
			OrderID:     order.ID,
			ProductID:   line.ProductID,
			ProductName: line.ProductName,
			UnitPrice:   line.UnitPrice,
			Size:        line.Size,
			Quantity:    line.Quantity,
		}
	}

	if err = s.orderRepo.CreateOrderItems(ctx, tx, items); err != nil {
		s.logger.Error().
			Err(err).
			Str("order_id", order.ID.String()).
			Int("item_count", len(items)).
			Msg("failed to create order items")
		return nil, nil, fmt.Errorf("failed to create order items: %w", err)
	}

	// Commit transaction
	if err = tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to commit transaction")
		return nil, nil, fmt.Errorf("failed to create order: %w", err)
	}

	return order, items, nil
}

// GetByID retrieves an order by its ID with all of its lines.
func (s *orderService) GetByID(ctx context.Context, id uuid.UUID) (*model.OrderResponse, error) {
	order, items, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to get order")
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	if order == nil {
		s.logger.Debug().Str("order_id", id.String()).Msg("order not found")
		return nil, nil
	}

	if items == nil {
		items = []model.OrderItem{}
	}

	return &model.OrderResponse{
		Order: *order,
		Items: items,
	}, nil
}

// validateOrderPayload checks required fields, line shape and prices.
func (s *orderService) validateOrderPayload(payload *model.OrderPayload) error {
	if err := validation.Struct(s.validate, payload); err != nil {
		return err
	}

	for i, line := range payload.Lines {
		if line.UnitPrice.IsNegative() {
			return &model.ValidationError{Fields: []string{fmt.Sprintf("lines[%d].unitPrice", i)}}
		}
	}

	return nil
}

// ReferenceFor derives the human-presentable reference of an order id, e.g.
// CS-1A2B3C4D.
func ReferenceFor(id uuid.UUID) string {
	hex := strings.ReplaceAll(id.String(), "-", "")
	return ReferencePrefix + strings.ToUpper(hex[:8])
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
