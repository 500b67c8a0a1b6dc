package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// DefaultRedisTTL is how long an untouched cart survives in Redis.
const DefaultRedisTTL = 30 * 24 * time.Hour

// RedisPersister stores cart records as Redis string values.
type RedisPersister struct {
	client *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

// NewRedisPersister creates a persister on an existing client. A ttl of zero
// keeps records forever.
func NewRedisPersister(client *redis.Client, ttl time.Duration, logger zerolog.Logger) *RedisPersister {
	return &RedisPersister{
		client: client,
		ttl:    ttl,
		logger: logger.With().Str("component", "cart-redis-persister").Logger(),
	}
}

// Load fetches the record for key. A missing key is not an error.
func (p *RedisPersister) Load(ctx context.Context, key string) ([]byte, error) {
	data, err := p.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		p.logger.Error().Err(err).Str("key", key).Msg("failed to load cart from redis")
		return nil, fmt.Errorf("failed to load cart from redis: %w", err)
	}
	return data, nil
}

// Save writes the record for key and refreshes its expiry.
func (p *RedisPersister) Save(ctx context.Context, key string, data []byte) error {
	if err := p.client.Set(ctx, key, data, p.ttl).Err(); err != nil {
		p.logger.Error().Err(err).Str("key", key).Msg("failed to save cart to redis")
		return fmt.Errorf("failed to save cart to redis: %w", err)
	}
	return nil
}
