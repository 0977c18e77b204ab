package config

import (
	"testing"
	"time"
)

func TestLoadRateLimitConfigDefaults(t *testing.T) {
	t.Setenv("RATE_LIMIT_ENABLED", "")
	t.Setenv("RATE_LIMIT_LIMIT", "")
	t.Setenv("RATE_LIMIT_WINDOW", "")

	cfg := LoadRateLimitConfig()
	if !cfg.Enabled || cfg.Limit != 10 || cfg.Window != time.Minute || cfg.Prefix != "rl" {
		t.Fatalf("defaults = %+v", cfg)
	}
}

func TestLoadRateLimitConfigOverrides(t *testing.T) {
	t.Setenv("RATE_LIMIT_ENABLED", "off")
	t.Setenv("RATE_LIMIT_LIMIT", "3")
	t.Setenv("RATE_LIMIT_WINDOW", "30s")

	cfg := LoadRateLimitConfig()
	if cfg.Enabled {
		t.Fatal("limiter must be disabled by RATE_LIMIT_ENABLED=off")
	}
	if cfg.Limit != 3 || cfg.Window != 30*time.Second {
		t.Fatalf("overrides = %+v", cfg)
	}
}

func TestEnvHelpersFallBackOnGarbage(t *testing.T) {
	t.Setenv("CACHE_ENABLED", "maybe")
	t.Setenv("CACHE_TTL", "soonish")

	cfg := LoadCacheConfig()
	if !cfg.Enabled || cfg.TTL != 5*time.Minute {
		t.Fatalf("garbage values must fall back to defaults: %+v", cfg)
	}
}
