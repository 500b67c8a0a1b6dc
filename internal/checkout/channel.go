// Package checkout turns a cart and customer details into an order and hands it
// to a transmission channel.
package checkout

import (
	"context"

	"cresshoe/internal/model"
)

// Channel names used in configuration and in SubmitResult.Channel.
const (
	ChannelAPI      = "api"
	ChannelWhatsApp = "whatsapp"
)

// Channel transmits a finalised order. Implementations return a
// *model.SubmissionError when the order could not be handed over.
type Channel interface {
	Name() string
	Send(ctx context.Context, payload *model.OrderPayload) (*model.SubmitResult, error)
}

// CartStore is the part of a cart the submitter reads and settles.
type CartStore interface {
	Key() string
	Items() []model.CartLineItem
	RemoveLines(ctx context.Context, lines []model.CartLineItem)
	Close()
}
