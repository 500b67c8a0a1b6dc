package checkout

import (
	"context"
	"net/url"
	"strings"

	"cresshoe/internal/model"

	"github.com/rs/zerolog"
)

const whatsAppBaseURL = "https://wa.me/"

// LinkOpener hands a deep link to whatever opens it.
type LinkOpener interface {
	Open(ctx context.Context, link string) error
}

// LinkOpenerFunc adapts a function to LinkOpener.
type LinkOpenerFunc func(ctx context.Context, link string) error

// Open calls f.
func (f LinkOpenerFunc) Open(ctx context.Context, link string) error {
	return f(ctx, link)
}

// LogOpener returns an opener that records the link and leaves opening to the
// client that receives SubmitResult.RedirectURL.
func LogOpener(logger zerolog.Logger) LinkOpener {
	logger = logger.With().Str("component", "link-opener").Logger()
	return LinkOpenerFunc(func(ctx context.Context, link string) error {
		logger.Info().Int("link_length", len(link)).Msg("messaging link ready for client")
		return nil
	})
}

// WhatsAppChannel renders the order as a message and opens a wa.me link. It
// cannot observe delivery and succeeds as soon as the link is opened.
type WhatsAppChannel struct {
	number   string
	currency string
	opener   LinkOpener
	logger   zerolog.Logger
}

// NewWhatsAppChannel creates a channel that targets number. Formatting
// characters in number are dropped.
func NewWhatsAppChannel(number, currency string, opener LinkOpener, logger zerolog.Logger) *WhatsAppChannel {
	return &WhatsAppChannel{
		number:   strings.TrimPrefix(NormalizePhone(number), "+"),
		currency: currency,
		opener:   opener,
		logger:   logger.With().Str("component", "whatsapp-channel").Logger(),
	}
}

// Name returns the channel name.
func (c *WhatsAppChannel) Name() string {
	return ChannelWhatsApp
}

// Link returns the deep link carrying the rendered order.
func (c *WhatsAppChannel) Link(payload *model.OrderPayload) string {
	return whatsAppBaseURL + c.number + "?text=" + encodeComponent(RenderMessage(payload, c.currency))
}

// Send opens the deep link for payload.
func (c *WhatsAppChannel) Send(ctx context.Context, payload *model.OrderPayload) (*model.SubmitResult, error) {
	link := c.Link(payload)

	if err := c.opener.Open(ctx, link); err != nil {
		c.logger.Error().Err(err).Msg("failed to open messaging link")
		return nil, &model.SubmissionError{
			Channel: ChannelWhatsApp,
			Message: "failed to open messaging link",
			Err:     err,
		}
	}

	c.logger.Info().
		Int("lines", len(payload.Lines)).
		Str("total", payload.Total.String()).
		Msg("order handed to messaging link")

	return &model.SubmitResult{
		Channel:     ChannelWhatsApp,
		RedirectURL: link,
	}, nil
}

// encodeComponent percent-encodes s for use as a query value, spaces as %20.
func encodeComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
