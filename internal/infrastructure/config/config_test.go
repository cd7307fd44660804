package config_test

import (
	"testing"
	"time"

	"github.com/olegbp/cryptofolio/internal/infrastructure/config"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_SECRET", "")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("unexpected error loading config: %v", err)
	}

	if cfg.DatabaseURL == "" {
		t.Fatalf("expected default database URL to be set")
	}

	if cfg.JWTSecret != "" {
		t.Fatalf("expected JWT secret default to be empty, got %q", cfg.JWTSecret)
	}

	if cfg.HTTPPort != "8080" {
		t.Fatalf("expected default HTTP port 8080, got %s", cfg.HTTPPort)
	}

	if cfg.AllowShortSelling {
		t.Fatalf("expected short selling to be disabled by default")
	}

	if cfg.CacheMaxAge != 15*time.Minute {
		t.Fatalf("expected default cache max age of 15m, got %s", cfg.CacheMaxAge)
	}

	if cfg.RateLimit != 50 || cfg.RateBurst != 100 {
		t.Fatalf("expected default rate limit 50/100, got %v/%v", cfg.RateLimit, cfg.RateBurst)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://example")
	t.Setenv("REDIS_URL", "redis://example")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("DATABASE_TIMEOUT", "45s")
	t.Setenv("JWT_SECRET", "top-secret")
	t.Setenv("ALLOW_SHORT_SELLING", "true")
	t.Setenv("CACHE_MAX_AGE", "5m")
	t.Setenv("RATE_LIMIT", "0")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("unexpected error loading config: %v", err)
	}

	if cfg.DatabaseURL != "postgres://example" {
		t.Fatalf("expected custom database URL, got %s", cfg.DatabaseURL)
	}

	if cfg.RedisURL != "redis://example" {
		t.Fatalf("expected custom redis URL, got %s", cfg.RedisURL)
	}

	if cfg.HTTPPort != "9090" {
		t.Fatalf("expected HTTP port override, got %s", cfg.HTTPPort)
	}

	if cfg.DatabaseTimeout != 45*time.Second {
		t.Fatalf("expected database timeout override, got %s", cfg.DatabaseTimeout)
	}

	if cfg.JWTSecret != "top-secret" || !cfg.AllowShortSelling {
		t.Fatalf("expected overrides to apply, got secret=%s shortSelling=%v", cfg.JWTSecret, cfg.AllowShortSelling)
	}

	if cfg.CacheMaxAge != 5*time.Minute {
		t.Fatalf("expected cache max age override, got %s", cfg.CacheMaxAge)
	}

	if cfg.RateLimit != 0 {
		t.Fatalf("expected rate limiting to be disabled, got %v", cfg.RateLimit)
	}
}

func TestLoadInvalidDuration(t *testing.T) {
	t.Setenv("HTTP_READ_TIMEOUT", "not-a-duration")

	if _, err := config.Load(); err == nil {
		t.Fatalf("expected error for invalid duration")
	}
}
