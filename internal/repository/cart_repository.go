package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// cartRepository implements CartRepository on the cart_records table.
type cartRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewCartRepository creates a new PostgreSQL-backed cart record store.
func NewCartRepository(pool *pgxpool.Pool, logger zerolog.Logger) CartRepository {
	return &cartRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "cart").Logger(),
	}
}

// Load returns the stored payload for key, or nil when no row exists.
func (r *cartRepository) Load(ctx context.Context, key string) ([]byte, error) {
	query := `SELECT payload::text FROM cart_records WHERE key = $1`

	var payload string
	err := r.pool.QueryRow(ctx, query, key).Scan(&payload)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Str("key", key).Msg("cart record not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("key", key).Msg("failed to query cart record")
		return nil, fmt.Errorf("failed to query cart record: %w", err)
	}

	return []byte(payload), nil
}

// Save upserts the payload for key.
func (r *cartRepository) Save(ctx context.Context, key string, data []byte) error {
	query := `
		INSERT INTO cart_records (key, payload, updated_at)
		VALUES ($1, $2::jsonb, NOW())
		ON CONFLICT (key) DO UPDATE
		SET payload = EXCLUDED.payload, updated_at = EXCLUDED.updated_at
	`

	if _, err := r.pool.Exec(ctx, query, key, string(data)); err != nil {
		r.logger.Error().Err(err).Str("key", key).Msg("failed to save cart record")
		return fmt.Errorf("failed to save cart record: %w", err)
	}

	return nil
}
