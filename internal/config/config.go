package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Logger   LoggerConfig
	Auth     AuthConfig
	S3       S3Config
	Catalog  CatalogConfig
	Cart     CartConfig
	Checkout CheckoutConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
}

// ServerConfig holds server-related configuration.
type ServerConfig struct {
	Host string
	Port int
}

// DatabaseConfig holds database-related configuration.
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Database        string
	MaxConnections  int
	MinConnections  int
	MaxConnLifetime int // seconds
}

// LoggerConfig holds logger-related configuration.
type LoggerConfig struct {
	Level  string
	Format string // "json" or "console"
}

// AuthConfig holds authentication configuration.
type AuthConfig struct {
	APIKey string
}

// S3Config holds AWS S3 configuration for the catalogue document.
type S3Config struct {
	Enabled bool
	Bucket  string
	Region  string
	Prefix  string // Path prefix within bucket (e.g., "catalog/")
}

// CatalogConfig holds the location of the product catalogue.
type CatalogConfig struct {
	Path string
}

// CartConfig holds cart persistence configuration.
type CartConfig struct {
	Backend         string // "file", "redis", "postgres" or "memory"
	Dir             string // used by the file backend
	Namespace       string
	MaxLineQuantity int
	TTL             time.Duration // record expiry for the redis backend; zero keeps records forever
	MaxSessions     int           // live cart stores held in memory
	SessionIdle     time.Duration // a live store untouched this long is released; zero disables
}

// CheckoutConfig holds order submission configuration.
type CheckoutConfig struct {
	Channel   string // "api" or "whatsapp"
	IntakeURL string
	IntakeKey string
	WhatsApp  string
	Currency  string
	Timeout   time.Duration
}

// RedisConfig holds Redis connection configuration.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// KafkaConfig holds configuration for order event publishing.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// Enabled reports whether order events should be published.
func (c *KafkaConfig) Enabled() bool {
	return len(c.Brokers) > 0
}

// Load loads configuration from environment variables. A .env file in the
// working directory is read first when present; real environment variables win.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: getEnvAsInt("SERVER_PORT", 8080),
		},
		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnvAsInt("DB_PORT", 5432),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", ""),
			Database:        getEnv("DB_NAME", "cresshoe"),
			MaxConnections:  getEnvAsInt("DB_MAX_CONNECTIONS", 25),
			MinConnections:  getEnvAsInt("DB_MIN_CONNECTIONS", 5),
			MaxConnLifetime: getEnvAsInt("DB_MAX_CONN_LIFETIME", 300),
		},
		Logger: LoggerConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Auth: AuthConfig{
			APIKey: getEnv("API_KEY", ""),
		},
		S3: S3Config{
			Enabled: getEnvAsBool("S3_ENABLED", false),
			Bucket:  getEnv("S3_BUCKET", ""),
			Region:  getEnv("S3_REGION", "us-east-1"),
			Prefix:  getEnv("S3_PREFIX", "catalog/"),
		},
		Catalog: CatalogConfig{
			Path: getEnv("CATALOG_PATH", "data/products.json"),
		},
		Cart: CartConfig{
			Backend:         getEnv("CART_BACKEND", "file"),
			Dir:             getEnv("CART_DIR", "data/carts"),
			Namespace:       getEnv("CART_NAMESPACE", "whitelight_cart"),
			MaxLineQuantity: getEnvAsInt("CART_MAX_LINE_QUANTITY", 10),
			TTL:             time.Duration(getEnvAsInt("CART_TTL_HOURS", 720)) * time.Hour,
			MaxSessions:     getEnvAsInt("CART_MAX_SESSIONS", 10000),
			SessionIdle:     time.Duration(getEnvAsInt("CART_SESSION_IDLE_MINUTES", 60)) * time.Minute,
		},
		Checkout: CheckoutConfig{
			Channel:   getEnv("CHECKOUT_CHANNEL", "whatsapp"),
			IntakeURL: getEnv("CHECKOUT_INTAKE_URL", ""),
			IntakeKey: getEnv("CHECKOUT_INTAKE_KEY", ""),
			WhatsApp:  getEnv("CHECKOUT_WHATSAPP", "+254700000000"),
			Currency:  getEnv("CHECKOUT_CURRENCY", "KSh"),
			Timeout:   time.Duration(getEnvAsInt("CHECKOUT_TIMEOUT_SECONDS", 15)) * time.Second,
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Kafka: KafkaConfig{
			Brokers: getEnvAsList("KAFKA_BROKERS"),
			Topic:   getEnv("KAFKA_ORDER_TOPIC", "orders"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}

	if c.Database.Port < 1 || c.Database.Port > 65535 {
		return fmt.Errorf("invalid database port: %d", c.Database.Port)
	}

	if c.Database.User == "" {
		return fmt.Errorf("database user is required")
	}

	if c.Database.Database == "" {
		return fmt.Errorf("database name is required")
	}

	if c.Database.MaxConnections < 1 {
		return fmt.Errorf("database max connections must be at least 1")
	}

	if c.Database.MinConnections < 1 {
		return fmt.Errorf("database min connections must be at least 1")
	}

	if c.Database.MinConnections > c.Database.MaxConnections {
		return fmt.Errorf("database min connections cannot exceed max connections")
	}

	if c.Auth.APIKey == "" {
		return fmt.Errorf("API key is required")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}

	if !validLogLevels[c.Logger.Level] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Logger.Format != "json" && c.Logger.Format != "console" {
		return fmt.Errorf("invalid log format: %s (must be json or console)", c.Logger.Format)
	}

	if c.S3.Enabled {
		if c.S3.Bucket == "" {
			return fmt.Errorf("S3 bucket is required when S3 is enabled")
		}
		if c.S3.Region == "" {
			return fmt.Errorf("S3 region is required when S3 is enabled")
		}
	}

	if c.Catalog.Path == "" {
		return fmt.Errorf("catalog path is required")
	}

	switch c.Cart.Backend {
	case "file":
		if c.Cart.Dir == "" {
			return fmt.Errorf("cart directory is required for the file backend")
		}
	case "redis":
		if c.Redis.Addr == "" {
			return fmt.Errorf("redis address is required for the redis backend")
		}
	case "postgres", "memory":
	default:
		return fmt.Errorf("invalid cart backend: %s (must be file, redis, postgres, or memory)", c.Cart.Backend)
	}

	if c.Cart.Namespace == "" {
		return fmt.Errorf("cart namespace is required")
	}

	if c.Cart.MaxLineQuantity < 1 {
		return fmt.Errorf("cart max line quantity must be at least 1")
	}

	if c.Cart.MaxSessions < 1 {
		return fmt.Errorf("cart max sessions must be at least 1")
	}

	switch c.Checkout.Channel {
	case "api":
		if c.Checkout.IntakeURL == "" {
			return fmt.Errorf("checkout intake URL is required for the api channel")
		}
	case "whatsapp":
		if c.Checkout.WhatsApp == "" {
			return fmt.Errorf("checkout WhatsApp number is required for the whatsapp channel")
		}
	default:
		return fmt.Errorf("invalid checkout channel: %s (must be api or whatsapp)", c.Checkout.Channel)
	}

	if c.Checkout.Timeout <= 0 {
		return fmt.Errorf("checkout timeout must be positive")
	}

	if c.Kafka.Enabled() && c.Kafka.Topic == "" {
		return fmt.Errorf("kafka topic is required when brokers are configured")
	}

	return nil
}

// ConnectionString returns the PostgreSQL connection string.
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.User,
		c.Password,
		c.Host,
		c.Port,
		c.Database,
	)
}

// Address returns the server address.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value.
func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value.
func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getEnvAsList splits a comma separated environment variable, dropping blanks.
func getEnvAsList(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
