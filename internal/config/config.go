package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joeshaw/envdecode"
)

// Store drivers.
const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
)

// Payment providers.
const (
	PaymentNone   = "none"
	PaymentStub   = "stub"
	PaymentStripe = "stripe"
)

// Config holds application level configuration loaded from environment variables.
type Config struct {
	ServerPort string `env:"SERVER_PORT,default=8080"`

	StoreDriver   string `env:"STORE_DRIVER,default=mysql"`
	DatabaseDSN   string `env:"DATABASE_DSN,default=user:password@tcp(localhost:3306)/contests?charset=utf8mb4&parseTime=True&loc=Local"`
	MongoURI      string `env:"MONGO_URI,default=mongodb://localhost:27017"`
	MongoDatabase string `env:"MONGO_DATABASE,default=contesthub"`
	ResetDB       bool   `env:"RESET_DB,default=false"`

	RedisAddr string `env:"REDIS_ADDR,default=localhost:6379"`
	RedisDB   int    `env:"REDIS_DB,default=0"`
	RedisPass string `env:"REDIS_PASSWORD"`

	JWTSecret      string        `env:"JWT_SECRET"`
	TokenTTL       time.Duration `env:"TOKEN_TTL,default=168h"`
	GoogleClientID string        `env:"GOOGLE_CLIENT_ID"`

	PaymentProvider  string `env:"PAYMENT_PROVIDER,default=none"`
	PaymentSecretKey string `env:"PAYMENT_SECRET_KEY"`
	PaymentCurrency  string `env:"PAYMENT_CURRENCY,default=usd"`

	CORSOrigins []string `env:"CORS_ORIGINS,default=*"`
	LogLevel    string   `env:"LOG_LEVEL,default=info"`
	LogFormat   string   `env:"LOG_FORMAT,default=json"`
	SwaggerHost string   `env:"SWAGGER_HOST"`
}

// Load builds Config from the environment and validates it.
func Load() (*Config, error) {
	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return nil, fmt.Errorf("decode environment: %w", err)
	}
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) normalize() {
	c.StoreDriver = strings.ToLower(strings.TrimSpace(c.StoreDriver))
	c.PaymentProvider = strings.ToLower(strings.TrimSpace(c.PaymentProvider))
	if c.PaymentProvider == "" {
		c.PaymentProvider = PaymentNone
	}
	c.PaymentCurrency = strings.ToLower(strings.TrimSpace(c.PaymentCurrency))
}

// Validate reports the first configuration problem that would prevent startup.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.JWTSecret) == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.TokenTTL <= 0 {
		return errors.New("TOKEN_TTL must be positive")
	}
	switch c.StoreDriver {
	case DriverMySQL, DriverPostgres:
		if c.DatabaseDSN == "" {
			return errors.New("DATABASE_DSN is required for SQL store drivers")
		}
	case DriverMongo:
		if c.MongoURI == "" || c.MongoDatabase == "" {
			return errors.New("MONGO_URI and MONGO_DATABASE are required for the mongo store driver")
		}
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}
	switch c.PaymentProvider {
	case PaymentNone, PaymentStub:
	case PaymentStripe:
		if c.PaymentSecretKey == "" {
			return errors.New("PAYMENT_SECRET_KEY is required for the stripe payment provider")
		}
	default:
		return fmt.Errorf("unknown PAYMENT_PROVIDER %q", c.PaymentProvider)
	}
	return nil
}
