// Package events publishes order lifecycle events to Kafka.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"cresshoe/internal/model"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
)

// EventOrderCreated is the event_type header of a stored order.
const EventOrderCreated = "order.created"

// Publisher emits order events.
type Publisher interface {
	PublishOrderCreated(ctx context.Context, order *model.Order, items []model.OrderItem) error
	Close() error
}

// MessageWriter is the part of *kafka.Writer the publisher needs.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// OrderCreated is the JSON body of an order.created event.
type OrderCreated struct {
	OrderID    string            `json:"orderId"`
	Reference  string            `json:"reference"`
	Name       string            `json:"name"`
	Phone      string            `json:"phone"`
	Total      decimal.Decimal   `json:"total"`
	Items      []model.OrderItem `json:"items"`
	OccurredAt time.Time         `json:"occurredAt"`
}

// kafkaPublisher writes events keyed by order id.
type kafkaPublisher struct {
	writer MessageWriter
	logger zerolog.Logger
}

// NewKafkaPublisher creates a publisher backed by writer.
func NewKafkaPublisher(writer MessageWriter, logger zerolog.Logger) Publisher {
	return &kafkaPublisher{
		writer: writer,
		logger: logger.With().Str("component", "order-events").Logger(),
	}
}

// PublishOrderCreated writes an order.created message.
func (p *kafkaPublisher) PublishOrderCreated(ctx context.Context, order *model.Order, items []model.OrderItem) error {
	body, err := json.Marshal(OrderCreated{
		OrderID:    order.ID.String(),
		Reference:  order.Reference,
		Name:       order.Name,
		Phone:      order.Phone,
		Total:      order.Total,
		Items:      items,
		OccurredAt: order.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("failed to encode order event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(order.ID.String()),
		Value: body,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(EventOrderCreated)},
			{Key: "aggregate_type", Value: []byte("order")},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to publish order event")
		return fmt.Errorf("failed to publish order event: %w", err)
	}

	p.logger.Debug().
		Str("order_id", order.ID.String()).
		Str("reference", order.Reference).
		Msg("order event published")

	return nil
}

// Close closes the underlying writer.
func (p *kafkaPublisher) Close() error {
	return p.writer.Close()
}

// nopPublisher drops every event.
type nopPublisher struct{}

// NewNopPublisher returns a publisher for deployments without a broker.
func NewNopPublisher() Publisher {
	return nopPublisher{}
}

func (nopPublisher) PublishOrderCreated(ctx context.Context, order *model.Order, items []model.OrderItem) error {
	return nil
}

func (nopPublisher) Close() error {
	return nil
}
