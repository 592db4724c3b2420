// Package config loads and validates server config from env and an optional .env file using Viper.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/exportsafe/lcaudit/internal/scoring"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	// Port is the HTTP listen port.
	Port string `mapstructure:"PORT"`
	// DBPath is the SQLite file holding the rule catalog (":memory:" for a throwaway catalog).
	DBPath string `mapstructure:"DB_PATH"`
	// CatalogSeedFile is a YAML catalog used to seed an empty database. Empty seeds the built-in catalog.
	CatalogSeedFile string `mapstructure:"CATALOG_SEED_FILE"`
	// DefaultProfile is the scoring profile used when a request names none.
	DefaultProfile string `mapstructure:"DEFAULT_PROFILE"`
	// DefaultJurisdiction is applied when a request names none; empty skips regulatory checks.
	DefaultJurisdiction string `mapstructure:"DEFAULT_JURISDICTION"`
	// PresentationWindowDays is the minimum gap between shipment and LC expiry.
	PresentationWindowDays int `mapstructure:"PRESENTATION_WINDOW_DAYS"`
	// BatchConcurrency bounds the audits of one batch that run at once.
	BatchConcurrency int `mapstructure:"BATCH_CONCURRENCY"`
	// MaxDocumentBytes caps the size of each submitted document.
	MaxDocumentBytes int `mapstructure:"MAX_DOCUMENT_BYTES"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `mapstructure:"LOG_LEVEL"`
	// LogFormat is text or json.
	LogFormat string `mapstructure:"LOG_FORMAT"`
	// ShutdownTimeout bounds graceful shutdown (e.g. "10s").
	ShutdownTimeout string `mapstructure:"SHUTDOWN_TIMEOUT"`
}

// Load reads .env (if present), then builds and validates Config from the environment via Viper.
// Missing .env is ignored. Env vars override .env.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // ignore ErrConfigFileNotFound

	v.AutomaticEnv()

	v.SetDefault("PORT", "8080")
	v.SetDefault("DB_PATH", "lcaudit.db")
	v.SetDefault("CATALOG_SEED_FILE", "")
	v.SetDefault("DEFAULT_PROFILE", scoring.ProfileForensic)
	v.SetDefault("DEFAULT_JURISDICTION", "")
	v.SetDefault("PRESENTATION_WINDOW_DAYS", 21)
	v.SetDefault("BATCH_CONCURRENCY", 4)
	v.SetDefault("MAX_DOCUMENT_BYTES", 1<<20)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "text")
	v.SetDefault("SHUTDOWN_TIMEOUT", "10s")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	if cfg.Port == "" {
		return nil, errors.New("config: PORT must be set")
	}
	if cfg.DBPath == "" {
		return nil, errors.New("config: DB_PATH must be set")
	}
	if _, err := scoring.Lookup(cfg.DefaultProfile); err != nil {
		return nil, fmt.Errorf("config: DEFAULT_PROFILE: %w", err)
	}
	if cfg.PresentationWindowDays < 1 {
		return nil, errors.New("config: PRESENTATION_WINDOW_DAYS must be positive")
	}
	if cfg.BatchConcurrency < 1 || cfg.BatchConcurrency > 64 {
		return nil, errors.New("config: BATCH_CONCURRENCY must be between 1 and 64")
	}
	if cfg.MaxDocumentBytes < 1024 {
		return nil, errors.New("config: MAX_DOCUMENT_BYTES must be at least 1024")
	}
	switch strings.ToLower(cfg.LogFormat) {
	case "text", "json":
	default:
		return nil, fmt.Errorf("config: LOG_FORMAT must be text or json, got %q", cfg.LogFormat)
	}

	return &cfg, nil
}

// Addr is the listen address for Port.
func (c *Config) Addr() string {
	return ":" + strings.TrimPrefix(c.Port, ":")
}

// ShutdownGrace parses ShutdownTimeout. Returns 10s if unset or invalid.
func (c *Config) ShutdownGrace() time.Duration {
	d, err := time.ParseDuration(c.ShutdownTimeout)
	if err != nil || d <= 0 {
		return 10 * time.Second
	}
	return d
}
