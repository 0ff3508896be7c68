package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

// Config holds all configuration for the application.
type Config struct {
	Server       ServerConfig
	DB           DBConfig
	Log          LogConfig
	Loyalty      LoyaltyConfig
	Checkout     CheckoutConfig
	Subscription SubscriptionConfig
}

// ServerConfig holds server-related configuration.
type ServerConfig struct {
	Port            string `envconfig:"SERVER_PORT" default:"3000"`
	ShutdownTimeout int    `envconfig:"SHUTDOWN_TIMEOUT" default:"30"` // seconds
}

// DBConfig holds database-related configuration.
// WARNING: Default password is for local development only.
// In production, always set DB_PASSWORD via environment variable.
// In production, set DB_SSLMODE to "require" or "verify-full".
type DBConfig struct {
	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     int    `envconfig:"DB_PORT" default:"5432"`
	User     string `envconfig:"DB_USER" default:"postgres"`
	Password string `envconfig:"DB_PASSWORD" default:"postgres"` // CHANGE IN PRODUCTION
	Name     string `envconfig:"DB_NAME" default:"barbershop_db"`
	SSLMode  string `envconfig:"DB_SSLMODE" default:"disable"` // Use "require" in production
	MaxConns int    `envconfig:"DB_MAX_CONNS" default:"25"`
	MinConns int    `envconfig:"DB_MIN_CONNS" default:"5"`
}

// DSN returns the PostgreSQL connection string.
func (c DBConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s&pool_max_conns=%d&pool_min_conns=%d",
		c.User, c.Password, c.Host, c.Port, c.Name, c.SSLMode, c.MaxConns, c.MinConns)
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `envconfig:"LOG_LEVEL" default:"info"`
	Pretty bool   `envconfig:"LOG_PRETTY" default:"false"`
}

// LoyaltyConfig holds tier thresholds and the redemption policy.
// Thresholds must be strictly increasing; bronze implicitly starts at 0.
type LoyaltyConfig struct {
	SilverMinPoints        int64 `envconfig:"LOYALTY_SILVER_MIN_POINTS" default:"500"`
	GoldMinPoints          int64 `envconfig:"LOYALTY_GOLD_MIN_POINTS" default:"1500"`
	PlatinumMinPoints      int64 `envconfig:"LOYALTY_PLATINUM_MIN_POINTS" default:"3000"`
	RedemptionValidityDays int   `envconfig:"LOYALTY_REDEMPTION_VALIDITY_DAYS" default:"90"`
}

// CheckoutConfig holds checkout policy values.
// ShippingFee is the flat home-delivery fee; pickup orders always ship for free.
type CheckoutConfig struct {
	ShippingFee decimal.Decimal `envconfig:"CHECKOUT_SHIPPING_FEE" default:"9.90"`
}

// SubscriptionConfig holds subscription plan pricing and the member discount.
type SubscriptionConfig struct {
	MonthlyPrice    decimal.Decimal `envconfig:"SUBSCRIPTION_MONTHLY_PRICE" default:"49.90"`
	YearlyPrice     decimal.Decimal `envconfig:"SUBSCRIPTION_YEARLY_PRICE" default:"479.90"`
	DiscountPercent int64           `envconfig:"SUBSCRIPTION_DISCOUNT_PERCENT" default:"15"`
}

// Load parses environment variables into the Config struct.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
