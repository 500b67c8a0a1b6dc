package checkout

import (
	"context"
	"errors"
	"strings"
	"sync"

	"cresshoe/internal/model"
	"cresshoe/internal/validation"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// Submitter validates customer details, builds the order from a cart and sends
// it through a Channel. A successful submit clears and closes the cart; a failed
// one leaves it untouched.
type Submitter struct {
	channel  Channel
	validate *validator.Validate
	logger   zerolog.Logger

	mu       sync.Mutex
	inFlight map[string]struct{}
}

// NewSubmitter creates a submitter that transmits through channel.
func NewSubmitter(channel Channel, logger zerolog.Logger) *Submitter {
	return &Submitter{
		channel:  channel,
		validate: validation.New(),
		logger:   logger.With().Str("service", "checkout").Logger(),
		inFlight: make(map[string]struct{}),
	}
}

// Channel returns the name of the channel orders are sent through.
func (s *Submitter) Channel() string {
	return s.channel.Name()
}

// Submit sends the contents of store as an order for fields.
//
// It returns a *model.ValidationError when name or phone is missing,
// model.ErrEmptyCart when the cart has no lines, model.ErrSubmissionInFlight
// when another submit for the same cart has not returned yet, and the
// channel's *model.SubmissionError on transmission failure. On success the
// submitted lines are removed from the cart and the cart is closed.
func (s *Submitter) Submit(ctx context.Context, store CartStore, fields model.CustomerFields) (*model.SubmitResult, error) {
	if err := s.validateFields(fields); err != nil {
		s.logger.Warn().Err(err).Str("cart", store.Key()).Msg("checkout validation failed")
		return nil, err
	}

	release, ok := s.acquire(store.Key())
	if !ok {
		s.logger.Warn().Str("cart", store.Key()).Msg("checkout already in progress")
		return nil, model.ErrSubmissionInFlight
	}
	defer release()

	items := store.Items()
	if len(items) == 0 {
		return nil, model.ErrEmptyCart
	}

	payload := BuildPayload(fields, items)

	result, err := s.channel.Send(ctx, payload)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("cart", store.Key()).
			Str("channel", s.channel.Name()).
			Msg("order submission failed")
		var subErr *model.SubmissionError
		if !errors.As(err, &subErr) {
			err = &model.SubmissionError{Channel: s.channel.Name(), Message: "order submission failed", Err: err}
		}
		return nil, err
	}

	// Only the submitted lines leave the cart; anything added during the
	// send stays for the next order.
	store.RemoveLines(ctx, items)
	store.Close()

	s.logger.Info().
		Str("cart", store.Key()).
		Str("channel", result.Channel).
		Str("reference", result.OrderReference).
		Int("lines", len(payload.Lines)).
		Str("total", payload.Total.String()).
		Msg("order submitted")

	return result, nil
}

// validateFields checks the required customer fields after trimming
// whitespace. A phone with no digits counts as missing.
func (s *Submitter) validateFields(fields model.CustomerFields) error {
	trimmed := model.CustomerFields{
		Name:  strings.TrimSpace(fields.Name),
		Phone: NormalizePhone(fields.Phone),
	}
	return validation.Struct(s.validate, trimmed)
}

// acquire marks key as in flight. The returned func clears the mark.
func (s *Submitter) acquire(key string) (func(), bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, busy := s.inFlight[key]; busy {
		return nil, false
	}
	s.inFlight[key] = struct{}{}

	return func() {
		s.mu.Lock()
		delete(s.inFlight, key)
		s.mu.Unlock()
	}, true
}
