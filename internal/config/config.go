// Package config loads server configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds the server configuration.
type Config struct {
	// HTTP server
	Port        int    `env:"PORT" envDefault:"8080"`
	MetricsPath string `env:"METRICS_PATH" envDefault:"/metrics"`

	// Storage
	DBPath string `env:"DB_PATH" envDefault:"./data/tripsplit.db"`

	// Auth
	JWTSecret string        `env:"JWT_SECRET"`
	TokenTTL  time.Duration `env:"TOKEN_TTL" envDefault:"24h"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`

	// Exchange rates
	RatesURL      string        `env:"RATES_URL" envDefault:"https://api.exchangerate-api.com/v4/latest"`
	RatesCacheTTL time.Duration `env:"RATES_CACHE_TTL" envDefault:"30m"`
	RatesTimeout  time.Duration `env:"RATES_TIMEOUT" envDefault:"10s"`

	// BaseCurrency is used for trips created without one.
	BaseCurrency string `env:"BASE_CURRENCY" envDefault:"CNY"`
}

// Load reads an optional .env file, then parses the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return Parse()
}

// Parse builds a Config from the current environment and validates it.
func Parse() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid PORT %d", c.Port)
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("TOKEN_TTL must be positive, got %s", c.TokenTTL)
	}
	if c.RatesCacheTTL <= 0 {
		return fmt.Errorf("RATES_CACHE_TTL must be positive, got %s", c.RatesCacheTTL)
	}
	if c.RatesTimeout <= 0 {
		return fmt.Errorf("RATES_TIMEOUT must be positive, got %s", c.RatesTimeout)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("LOG_FORMAT must be text or json, got %q", c.LogFormat)
	}
	return nil
}

// Addr returns the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}
