package checkout

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"cresshoe/internal/model"

	"github.com/rs/zerolog"
)

const maxAckBytes = 1 << 20

// APIChannel posts orders to an order intake endpoint and expects an
// acknowledgement carrying an order reference. Each Send is a single attempt.
type APIChannel struct {
	url    string
	apiKey string
	client *http.Client
	logger zerolog.Logger
}

// NewAPIChannel creates a channel that posts to url. apiKey, when set, is sent
// in the X-API-Key header.
func NewAPIChannel(url, apiKey string, timeout time.Duration, logger zerolog.Logger) *APIChannel {
	return &APIChannel{
		url:    strings.TrimSpace(url),
		apiKey: apiKey,
		client: &http.Client{Timeout: timeout},
		logger: logger.With().Str("component", "api-channel").Logger(),
	}
}

// Name returns the channel name.
func (c *APIChannel) Name() string {
	return ChannelAPI
}

// Send posts payload as JSON and decodes the intake acknowledgement.
func (c *APIChannel) Send(ctx context.Context, payload *model.OrderPayload) (*model.SubmitResult, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, c.fail("failed to encode order", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, c.fail("failed to build intake request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	start := time.Now()
	res, err := c.client.Do(req)
	if err != nil {
		c.logger.Error().Err(err).Str("url", c.url).Msg("order intake request failed")
		return nil, c.fail("order intake unreachable", err)
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(res.Body, maxAckBytes))
	if err != nil {
		return nil, c.fail("failed to read intake response", err)
	}

	c.logger.Info().
		Int("status", res.StatusCode).
		Dur("duration", time.Since(start)).
		Int("lines", len(payload.Lines)).
		Msg("order intake responded")

	var ack model.IntakeResponse
	decodeErr := json.Unmarshal(raw, &ack)

	if res.StatusCode < 200 || res.StatusCode > 299 {
		msg := fmt.Sprintf("order intake returned status %d", res.StatusCode)
		if decodeErr == nil && ack.Message != "" {
			msg = fmt.Sprintf("%s: %s", msg, ack.Message)
		}
		return nil, c.fail(msg, nil)
	}
	if decodeErr != nil {
		return nil, c.fail("invalid intake acknowledgement", decodeErr)
	}
	if !ack.Success {
		msg := ack.Message
		if msg == "" {
			msg = "order was not accepted"
		}
		return nil, c.fail(msg, nil)
	}
	if ack.Reference == "" {
		return nil, c.fail("intake acknowledgement has no order reference", nil)
	}

	return &model.SubmitResult{
		Channel:        ChannelAPI,
		OrderReference: ack.Reference,
	}, nil
}

func (c *APIChannel) fail(message string, err error) *model.SubmissionError {
	return &model.SubmissionError{
		Channel: ChannelAPI,
		Message: message,
		Err:     err,
	}
}
