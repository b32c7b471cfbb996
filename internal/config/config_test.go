package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JARBOT_LEDGER_ENDPOINT", "https://ledger.example/api")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.LedgerEndpoint != "https://ledger.example/api" {
		t.Errorf("endpoint = %q", cfg.LedgerEndpoint)
	}
	if cfg.CallTimeout != DefaultCallTimeout {
		t.Errorf("call timeout = %s", cfg.CallTimeout)
	}
	if cfg.CacheTTL != DefaultCacheTTL {
		t.Errorf("cache ttl = %s", cfg.CacheTTL)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("log level = %q", cfg.LogLevel)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("JARBOT_LEDGER_ENDPOINT", "https://ledger.example/api")
	t.Setenv("JARBOT_CALL_TIMEOUT", "3s")
	t.Setenv("JARBOT_CACHE_TTL", "90s")
	t.Setenv("JARBOT_DRAFT_MAX_AGE", "30m")
	t.Setenv("JARBOT_LOG_LEVEL", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.CallTimeout != 3*time.Second {
		t.Errorf("call timeout = %s", cfg.CallTimeout)
	}
	if cfg.CacheTTL != 90*time.Second {
		t.Errorf("cache ttl = %s", cfg.CacheTTL)
	}
	if cfg.DraftMaxAge != 30*time.Minute {
		t.Errorf("draft max age = %s", cfg.DraftMaxAge)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("log level = %q", cfg.LogLevel)
	}
}

func TestLoadMissingEndpoint(t *testing.T) {
	t.Setenv("JARBOT_LEDGER_ENDPOINT", "")
	if _, err := Load(); err == nil {
		t.Error("expected error for missing endpoint")
	}
}

func TestLoadBadDuration(t *testing.T) {
	t.Setenv("JARBOT_LEDGER_ENDPOINT", "https://ledger.example/api")
	t.Setenv("JARBOT_CACHE_TTL", "five minutes")
	if _, err := Load(); err == nil {
		t.Error("expected error for malformed duration")
	}
}
