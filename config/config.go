package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap/zapcore"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Config is built once at startup and passed explicitly to every component.
type Config struct {
	Env  string
	Port string

	DBDriver string
	DBSource string

	JWTSecret string
	JWTTTL    time.Duration

	StripeSecretKey     string
	StripeWebhookSecret string
	PaymentCurrency     string

	AMQPURL string

	LogLevel zapcore.Level
	SeedDemo bool
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	// A missing .env is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := &Config{
		Env:                 strings.ToLower(getEnv("APP_ENV", EnvDevelopment)),
		Port:                getEnv("PORT", "8080"),
		DBDriver:            strings.ToLower(getEnv("DB_DRIVER", "sqlite")),
		DBSource:            getEnv("DB_SOURCE", "food_ordering.db"),
		JWTSecret:           getEnv("JWT_SECRET", "food_ordering_dev_secret"),
		StripeSecretKey:     os.Getenv("STRIPE_SECRET_KEY"),
		StripeWebhookSecret: os.Getenv("STRIPE_WEBHOOK_SECRET"),
		PaymentCurrency:     strings.ToLower(getEnv("PAYMENT_CURRENCY", "usd")),
		AMQPURL:             os.Getenv("AMQP_URL"),
	}

	ttl, err := time.ParseDuration(getEnv("JWT_TTL", "24h"))
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_TTL: %w", err)
	}
	cfg.JWTTTL = ttl

	if cfg.LogLevel, err = parseLevel(getEnv("LOG_LEVEL", "info")); err != nil {
		return nil, err
	}

	if cfg.SeedDemo, err = strconv.ParseBool(getEnv("SEED_DEMO", "false")); err != nil {
		return nil, fmt.Errorf("invalid SEED_DEMO: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.Env == EnvProduction
}

func (c *Config) validate() error {
	switch c.Env {
	case EnvDevelopment, EnvProduction:
	default:
		return fmt.Errorf("invalid APP_ENV %q", c.Env)
	}
	switch c.DBDriver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	if c.StripeSecretKey != "" && c.StripeWebhookSecret == "" {
		return fmt.Errorf("STRIPE_WEBHOOK_SECRET must be set when STRIPE_SECRET_KEY is set")
	}
	if c.IsProduction() {
		if os.Getenv("JWT_SECRET") == "" {
			return fmt.Errorf("JWT_SECRET must be set in production")
		}
		// the local gateway accepts unsigned webhooks
		if c.StripeSecretKey == "" {
			return fmt.Errorf("STRIPE_SECRET_KEY must be set in production")
		}
		if c.SeedDemo {
			return fmt.Errorf("SEED_DEMO is not allowed in production")
		}
	}
	return nil
}

func parseLevel(s string) (zapcore.Level, error) {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("invalid LOG_LEVEL %q: %w", s, err)
	}
	return lvl, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
