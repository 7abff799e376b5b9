package config

import (
	"testing"
	"time"
)

func TestLoadRateLimitConfigDefaults(t *testing.T) {
	for _, k := range []string{
		"RATE_LIMIT_ENABLED", "RATE_LIMIT_CAPACITY", "RATE_LIMIT_REFILL_TOKENS",
		"RATE_LIMIT_REFILL_INTERVAL", "RATE_LIMIT_TTL", "RATE_LIMIT_PREFIX",
	} {
		t.Setenv(k, "")
	}

	cfg := LoadRateLimitConfig()
	if !cfg.Enabled {
		t.Fatal("limiter disabled by default")
	}
	if cfg.Capacity != 10 || cfg.RefillTokens != 1 {
		t.Fatalf("capacity=%d refill=%d", cfg.Capacity, cfg.RefillTokens)
	}
	if cfg.RefillInterval != 2*time.Second || cfg.TTL != 10*time.Minute {
		t.Fatalf("interval=%s ttl=%s", cfg.RefillInterval, cfg.TTL)
	}
	if cfg.Prefix != "rl" {
		t.Fatalf("prefix=%q", cfg.Prefix)
	}
}

func TestLoadRateLimitConfigClampsNonsense(t *testing.T) {
	t.Setenv("RATE_LIMIT_ENABLED", "true")
	t.Setenv("RATE_LIMIT_CAPACITY", "-5")
	t.Setenv("RATE_LIMIT_REFILL_TOKENS", "0")
	t.Setenv("RATE_LIMIT_REFILL_INTERVAL", "-1s")
	t.Setenv("RATE_LIMIT_TTL", "1s")
	t.Setenv("RATE_LIMIT_PREFIX", "")

	cfg := LoadRateLimitConfig()
	if cfg.Capacity != 1 || cfg.RefillTokens != 1 {
		t.Fatalf("capacity=%d refill=%d", cfg.Capacity, cfg.RefillTokens)
	}
	if cfg.RefillInterval != time.Second {
		t.Fatalf("interval=%s", cfg.RefillInterval)
	}
	// TTL must cover several refill intervals or the bucket state expires
	// mid-window.
	if cfg.TTL < 5*cfg.RefillInterval {
		t.Fatalf("ttl=%s too short for interval %s", cfg.TTL, cfg.RefillInterval)
	}
}
