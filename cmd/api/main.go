package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cresshoe/internal/cart"
	"cresshoe/internal/catalog"
	"cresshoe/internal/checkout"
	"cresshoe/internal/config"
	"cresshoe/internal/database"
	"cresshoe/internal/events"
	"cresshoe/internal/handler"
	"cresshoe/internal/repository"
	"cresshoe/internal/router"
	"cresshoe/internal/service"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize logger
	logger := config.NewLogger(cfg.Logger)
	logger.Info().Msg("starting cresshoe storefront API server")

	// Create context for application lifecycle
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize database connection pool
	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	if err := repository.EnsureSchema(ctx, pool); err != nil {
		return fmt.Errorf("failed to prepare database schema: %w", err)
	}

	// Load the catalogue with S3 and local fallback
	lookup, err := newCatalog(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to load catalogue: %w", err)
	}

	// Initialize cart persistence
	persister, closePersister, err := newCartPersister(ctx, cfg, pool, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize cart persistence: %w", err)
	}
	defer closePersister()
	carts := cart.NewBoundedRegistry(cfg.Cart.Namespace, persister, cfg.Cart.MaxSessions, cfg.Cart.SessionIdle, logger)

	// Initialize the checkout channel
	channel, err := newChannel(cfg.Checkout, logger)
	if err != nil {
		return err
	}
	submitter := checkout.NewSubmitter(channel, logger)

	// Initialize order event publishing
	publisher := events.NewNopPublisher()
	if cfg.Kafka.Enabled() {
		publisher = events.NewKafkaPublisher(database.NewKafkaWriter(cfg.Kafka, logger), logger)
	} else {
		logger.Info().Msg("order events disabled (no kafka brokers configured)")
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			logger.Error().Err(err).Msg("failed to close event publisher")
		}
	}()

	// Initialize services
	productService := service.NewProductService(lookup, logger)
	cartService := service.NewCartService(lookup, cfg.Cart.MaxLineQuantity, logger)
	orderService := service.NewOrderService(repository.NewOrderRepository(pool, logger), publisher, logger)

	// Initialize HTTP handlers
	productHandler := handler.NewProductHandler(productService, logger)
	cartHandler := handler.NewCartHandler(carts, cartService, logger)
	checkoutHandler := handler.NewCheckoutHandler(carts, submitter, logger)
	orderHandler := handler.NewOrderHandler(orderService, logger)

	// Initialize router
	mux := router.New(productHandler, cartHandler, checkoutHandler, orderHandler, cfg.Auth.APIKey, logger)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.Checkout.Timeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Channel to listen for errors from the server
	serverErrors := make(chan error, 1)

	// Start HTTP server in a goroutine
	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Str("checkout_channel", submitter.Channel()).
			Str("cart_backend", cfg.Cart.Backend).
			Msg("HTTP server started")
		serverErrors <- server.ListenAndServe()
	}()

	// Channel to listen for interrupt signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a signal or an error
	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info().
			Str("signal", sig.String()).
			Msg("shutdown signal received, starting graceful shutdown")

		// Create a context with timeout for shutdown
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		// Attempt graceful shutdown
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown server gracefully")
			// Force close
			if closeErr := server.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		logger.Info().Msg("server shutdown completed")
	}

	return nil
}

func newCatalog(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (catalog.Lookup, error) {
	fileLoader := catalog.NewFileLoader(logger)
	loader := fileLoader

	if cfg.S3.Enabled {
		s3Loader, err := catalog.NewS3Loader(ctx, cfg.S3.Bucket, cfg.S3.Region, logger)
		if err != nil {
			logger.Warn().
				Err(err).
				Msg("failed to initialise S3 loader, falling back to local file system only")
		} else {
			loader = catalog.NewFallbackLoader(s3Loader, fileLoader, cfg.S3.Prefix, true, logger)
		}
	} else {
		logger.Info().Msg("using local file system for the catalogue (S3 disabled)")
	}

	return catalog.New(ctx, loader, cfg.Catalog.Path, logger)
}

func newCartPersister(ctx context.Context, cfg *config.Config, pool *pgxpool.Pool, logger zerolog.Logger) (cart.Persister, func(), error) {
	noop := func() {}

	switch cfg.Cart.Backend {
	case "file":
		p, err := cart.NewFilePersister(cfg.Cart.Dir, logger)
		return p, noop, err
	case "redis":
		client, err := database.NewRedisClient(ctx, cfg.Redis, logger)
		if err != nil {
			return nil, noop, err
		}
		return cart.NewRedisPersister(client, cfg.Cart.TTL, logger), func() {
			if err := client.Close(); err != nil {
				logger.Error().Err(err).Msg("failed to close redis client")
			}
		}, nil
	case "postgres":
		return repository.NewCartRepository(pool, logger), noop, nil
	default:
		logger.Warn().Msg("cart persistence is in memory only; carts are lost on restart")
		return cart.NewMemoryPersister(), noop, nil
	}
}

func newChannel(cfg config.CheckoutConfig, logger zerolog.Logger) (checkout.Channel, error) {
	switch cfg.Channel {
	case checkout.ChannelAPI:
		return checkout.NewAPIChannel(cfg.IntakeURL, cfg.IntakeKey, cfg.Timeout, logger), nil
	case checkout.ChannelWhatsApp:
		return checkout.NewWhatsAppChannel(cfg.WhatsApp, cfg.Currency, checkout.LogOpener(logger), logger), nil
	default:
		return nil, fmt.Errorf("unsupported checkout channel: %s", cfg.Channel)
	}
}
