package config

import (
	"errors"
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config is the process configuration read from CHORELEDGER_* environment
// variables.
type Config struct {
	Port     string `env:"PORT" envDefault:"8080"`
	DBPath   string `env:"DB_PATH" envDefault:"choreledger.db"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	TokenName      string `env:"TOKEN_NAME" envDefault:"Family Token"`
	TokenSymbol    string `env:"TOKEN_SYMBOL" envDefault:"FAM"`
	TreasurySupply int64  `env:"TREASURY_SUPPLY" envDefault:"0"`

	JWTSecret string `env:"JWT_SECRET"`
	JWTIssuer string `env:"JWT_ISSUER" envDefault:"choreledger"`

	// RateLimit is the number of mutating requests one caller may make per
	// minute.
	RateLimit int `env:"RATE_LIMIT" envDefault:"60"`

	OTelEndpoint string `env:"OTEL_ENDPOINT"`
}

const prefix = "CHORELEDGER_"

// Load parses the environment. It does not require a JWT secret; callers
// that sign or verify tokens should call RequireSecret.
func Load() (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: prefix}); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.TreasurySupply < 0 {
		return Config{}, fmt.Errorf("%sTREASURY_SUPPLY must be >= 0, got %d", prefix, cfg.TreasurySupply)
	}
	if cfg.RateLimit <= 0 {
		return Config{}, fmt.Errorf("%sRATE_LIMIT must be > 0, got %d", prefix, cfg.RateLimit)
	}
	return cfg, nil
}

var ErrNoSecret = errors.New(prefix + "JWT_SECRET is not set")

func (c Config) RequireSecret() error {
	if c.JWTSecret == "" {
		return ErrNoSecret
	}
	return nil
}
