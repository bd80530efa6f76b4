package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("missing config file must not be an error: %v", err)
	}
	if cfg.Server.Port != "8084" {
		t.Errorf("expected default port 8084, got %s", cfg.Server.Port)
	}
	if cfg.RateLimit.Store != "redis" {
		t.Errorf("expected redis rate-limit store by default, got %s", cfg.RateLimit.Store)
	}
	if cfg.Pagination.KeyTTLMinutes != 60 {
		t.Errorf("expected 60 minute key TTL by default, got %d", cfg.Pagination.KeyTTLMinutes)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
server:
  port: "9000"
baseUrl: https://api.bank.example/open-banking/accounts/v2
rateLimit:
  store: memory
  rps: 2.5
  burst: 5
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Port != "9000" {
		t.Errorf("expected port 9000, got %s", cfg.Server.Port)
	}
	if cfg.BaseURL != "https://api.bank.example/open-banking/accounts/v2" {
		t.Errorf("unexpected base url: %s", cfg.BaseURL)
	}
	if cfg.RateLimit.Store != "memory" || cfg.RateLimit.RPS != 2.5 || cfg.RateLimit.Burst != 5 {
		t.Errorf("rate limit section not loaded: %+v", cfg.RateLimit)
	}
	// Untouched values keep their defaults.
	if cfg.Redis.Addr != "localhost:6379" {
		t.Errorf("expected default redis addr, got %s", cfg.Redis.Addr)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "7777")
	t.Setenv("RATE_LIMIT", "42")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Port != "7777" {
		t.Errorf("expected env override port 7777, got %s", cfg.Server.Port)
	}
	if cfg.RateLimit.Limit != 42 {
		t.Errorf("expected env override limit 42, got %d", cfg.RateLimit.Limit)
	}
}

func TestLoadMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("server: [not a map"), 0o644); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Fatalf("expected error for malformed config file")
	}
}
