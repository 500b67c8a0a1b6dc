package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"cresshoe/internal/config"
	"cresshoe/internal/database"

	"github.com/segmentio/kafka-go"
)

// Checks that every backend named by the environment is reachable before the
// API server is started against it.
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Unable to load configuration: %v\n", err)
		os.Exit(1)
	}
	logger := config.NewLogger(cfg.Logger)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Unable to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	var dbName string
	if err := pool.QueryRow(ctx, "SELECT current_database()").Scan(&dbName); err != nil {
		fmt.Fprintf(os.Stderr, "QueryRow failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Successfully connected to database: %s\n", dbName)

	if cfg.Cart.Backend == "redis" {
		client, err := database.NewRedisClient(ctx, cfg.Redis, logger)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Unable to connect to redis: %v\n", err)
			os.Exit(1)
		}
		client.Close()
		fmt.Printf("Successfully connected to redis: %s\n", cfg.Redis.Addr)
	}

	if cfg.Kafka.Enabled() {
		conn, err := kafka.DialContext(ctx, "tcp", cfg.Kafka.Brokers[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Unable to connect to kafka: %v\n", err)
			os.Exit(1)
		}
		defer conn.Close()

		partitions, err := conn.ReadPartitions(cfg.Kafka.Topic)
		if err != nil {
			fmt.Printf("Kafka reachable, topic %q not readable yet: %v\n", cfg.Kafka.Topic, err)
		} else {
			fmt.Printf("Successfully connected to kafka: topic %q has %d partition(s)\n", cfg.Kafka.Topic, len(partitions))
		}
	}
}
