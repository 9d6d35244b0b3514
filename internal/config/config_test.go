package config

import (
	"errors"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != "8080" {
		t.Errorf("port = %q, want %q", cfg.Port, "8080")
	}
	if cfg.DBPath != "choreledger.db" {
		t.Errorf("db path = %q, want %q", cfg.DBPath, "choreledger.db")
	}
	if cfg.TokenName != "Family Token" || cfg.TokenSymbol != "FAM" {
		t.Errorf("token = %q/%q", cfg.TokenName, cfg.TokenSymbol)
	}
	if cfg.TreasurySupply != 0 {
		t.Errorf("treasury supply = %d, want 0", cfg.TreasurySupply)
	}
	if cfg.RateLimit != 60 {
		t.Errorf("rate limit = %d, want 60", cfg.RateLimit)
	}
	if !errors.Is(cfg.RequireSecret(), ErrNoSecret) {
		t.Error("expected missing secret error")
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("CHORELEDGER_PORT", "9090")
	t.Setenv("CHORELEDGER_TREASURY_SUPPLY", "1000")
	t.Setenv("CHORELEDGER_JWT_SECRET", "s3cret")
	t.Setenv("CHORELEDGER_OTEL_ENDPOINT", "http://localhost:4318")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != "9090" {
		t.Errorf("port = %q, want %q", cfg.Port, "9090")
	}
	if cfg.TreasurySupply != 1000 {
		t.Errorf("treasury supply = %d, want 1000", cfg.TreasurySupply)
	}
	if cfg.OTelEndpoint != "http://localhost:4318" {
		t.Errorf("otel endpoint = %q", cfg.OTelEndpoint)
	}
	if err := cfg.RequireSecret(); err != nil {
		t.Errorf("require secret: %v", err)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	cases := map[string]string{
		"CHORELEDGER_TREASURY_SUPPLY": "-5",
		"CHORELEDGER_RATE_LIMIT":      "0",
	}
	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, value)
			if _, err := Load(); err == nil {
				t.Errorf("expected error for %s=%s", key, value)
			}
		})
	}

	t.Run("not a number", func(t *testing.T) {
		t.Setenv("CHORELEDGER_TREASURY_SUPPLY", "lots")
		if _, err := Load(); err == nil {
			t.Error("expected parse error")
		}
	})
}
