package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/quarryfs/quarry/internal/api"
)

// ApplyDefaults sets default values for any unspecified configuration fields.
//
// This function is called after loading configuration from file and environment
// variables to fill in any missing values with sensible defaults.
//
// Default Strategy:
//   - Zero values (0, "", false, nil) are replaced with defaults
//   - Explicit values are preserved
func ApplyDefaults(cfg *Config) {
	applyLoggingDefaults(&cfg.Logging)
	applyShutdownTimeoutDefaults(cfg)
	applyCatalogDefaults(&cfg.Catalog)
	applyStagingDefaults(&cfg.Staging)
	applyScratchDefaults(&cfg.Scratch)
	applyMetricsDefaults(&cfg.Metrics)
	applyAPIDefaults(&cfg.API)
}

// applyLoggingDefaults sets logging defaults and normalizes values.
func applyLoggingDefaults(cfg *LoggingConfig) {
	if cfg.Level == "" {
		cfg.Level = "INFO"
	}
	// Normalize log level to uppercase for consistent internal representation
	cfg.Level = strings.ToUpper(cfg.Level)

	if cfg.Format == "" {
		cfg.Format = "text"
	}
	if cfg.Output == "" {
		cfg.Output = "stdout"
	}
}

// applyShutdownTimeoutDefaults sets shutdown timeout defaults.
func applyShutdownTimeoutDefaults(cfg *Config) {
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = 30 * time.Second
	}
}

// applyCatalogDefaults sets catalog store defaults.
func applyCatalogDefaults(cfg *CatalogConfig) {
	if cfg.Backend == "" {
		cfg.Backend = "badger"
	}
	if cfg.Badger.Path == "" && !cfg.Badger.InMemory {
		cfg.Badger.Path = "/var/lib/quarry/catalog"
	}
	cfg.Postgres.ApplyDefaults()
}

// applyStagingDefaults sets staging area defaults.
func applyStagingDefaults(cfg *StagingConfig) {
	if cfg.Dir == "" {
		cfg.Dir = filepath.Join(os.TempDir(), "quarry-staging")
	}
}

// applyScratchDefaults sets scratch volume defaults.
func applyScratchDefaults(cfg *ScratchConfig) {
	if cfg.VolumeID == "" {
		cfg.VolumeID = "scratch"
	}
}

// applyMetricsDefaults sets metrics defaults.
func applyMetricsDefaults(cfg *MetricsConfig) {
	// Enabled defaults to false (opt-in for metrics)
	// Port defaults to 9090 if metrics are enabled
	if cfg.Enabled && cfg.Port == 0 {
		cfg.Port = 9090
	}
}

// applyAPIDefaults sets API server defaults.
func applyAPIDefaults(cfg *api.APIConfig) {
	cfg.ApplyDefaults()
}

// GetDefaultConfig returns a Config struct with all default values applied.
//
// This is useful for:
//   - Generating sample configuration files
//   - Testing
//   - Documentation
func GetDefaultConfig() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}
