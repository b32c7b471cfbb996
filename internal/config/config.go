// Package config loads the bot core's settings from the environment, with an
// optional .env file for local development.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Default values. The cache TTL is deliberately short: the remote ledger is
// externally editable, so stale balances must age out in minutes.
const (
	DefaultCallTimeout = 10 * time.Second
	DefaultCacheTTL    = 5 * time.Minute
	DefaultDraftMaxAge = 0 // abandoned drafts live until superseded
	DefaultLogLevel    = "info"
)

// Config carries everything the library needs from its host process.
type Config struct {
	// LedgerEndpoint is the remote ledger's HTTP endpoint. Required.
	LedgerEndpoint string

	// CallTimeout bounds every ledger network call.
	CallTimeout time.Duration

	// CacheTTL bounds snapshot staleness for cached reads.
	CacheTTL time.Duration

	// DraftMaxAge evicts abandoned drafts after this long; zero keeps them
	// until superseded.
	DraftMaxAge time.Duration

	// KeywordRulesPath optionally replaces the built-in keyword→category
	// table with a YAML file.
	KeywordRulesPath string

	// FallbackCatalogPath optionally replaces the built-in degraded-mode
	// catalog with a YAML file.
	FallbackCatalogPath string

	// LogLevel is a zerolog level name.
	LogLevel string
}

// Load reads configuration from the environment. A .env file in the working
// directory is merged in when present; real env vars win.
func Load() (Config, error) {
	// Missing .env is the normal production case.
	_ = godotenv.Load()

	cfg := Config{
		LedgerEndpoint:      os.Getenv("JARBOT_LEDGER_ENDPOINT"),
		CallTimeout:         DefaultCallTimeout,
		CacheTTL:            DefaultCacheTTL,
		DraftMaxAge:         DefaultDraftMaxAge,
		KeywordRulesPath:    os.Getenv("JARBOT_KEYWORD_RULES"),
		FallbackCatalogPath: os.Getenv("JARBOT_FALLBACK_CATALOG"),
		LogLevel:            DefaultLogLevel,
	}

	if v := os.Getenv("JARBOT_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}

	var err error
	if cfg.CallTimeout, err = durationEnv("JARBOT_CALL_TIMEOUT", cfg.CallTimeout); err != nil {
		return Config{}, err
	}
	if cfg.CacheTTL, err = durationEnv("JARBOT_CACHE_TTL", cfg.CacheTTL); err != nil {
		return Config{}, err
	}
	if cfg.DraftMaxAge, err = durationEnv("JARBOT_DRAFT_MAX_AGE", cfg.DraftMaxAge); err != nil {
		return Config{}, err
	}

	if cfg.LedgerEndpoint == "" {
		return Config{}, fmt.Errorf("config: JARBOT_LEDGER_ENDPOINT is required")
	}
	return cfg, nil
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("config: %s must not be negative", key)
	}
	return d, nil
}
