// Package config provides configuration loading and validation from an
// optional YAML file and environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/cloudconfig/cloudconfig/internal/storage"
)

// Config holds all application configuration.
type Config struct {
	ListenAddr           string `yaml:"listen_addr"`            // API listen address (e.g., ":8080")
	MetricsListenAddr    string `yaml:"metrics_listen_addr"`    // Metrics listener address
	DatabasePath         string `yaml:"database_path"`          // SQLite database path
	LogLevel             string `yaml:"log_level"`              // debug, info, warn, error
	MaxClockDriftSeconds int64  `yaml:"max_clock_drift_seconds"` // allowed |server - client| time difference
	MaxBodySizeBytes     int64  `yaml:"max_body_size_bytes"`     // request body read limit
}

// Load builds the configuration: defaults, then the optional YAML file at
// configPath, then environment variable overrides.
func Load(configPath string) (*Config, error) {
	cfg := &Config{
		ListenAddr:           ":8080",
		MetricsListenAddr:    "localhost:9090",
		DatabasePath:         "/data/cloudconfig.db",
		LogLevel:             "info",
		MaxClockDriftSeconds: 300,
		MaxBodySizeBytes:     1024 * 1024,
	}

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("LISTEN_ADDR"); v != "" {
		cfg.ListenAddr = v
	}
	if v := os.Getenv("METRICS_LISTEN_ADDR"); v != "" {
		cfg.MetricsListenAddr = v
	}
	if v := os.Getenv("DATABASE_PATH"); v != "" {
		cfg.DatabasePath = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}

	if v := os.Getenv("MAX_CLOCK_DRIFT_SECONDS"); v != "" {
		parsed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid MAX_CLOCK_DRIFT_SECONDS: %w", err)
		}
		cfg.MaxClockDriftSeconds = parsed
	}

	if v := os.Getenv("MAX_BODY_SIZE_BYTES"); v != "" {
		parsed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid MAX_BODY_SIZE_BYTES: %w", err)
		}
		cfg.MaxBodySizeBytes = parsed
	}

	return nil
}

// Validate checks all configuration constraints. The drift tolerance must
// not exceed the nonce retention window: eviction would otherwise reopen a
// replay window inside the accepted drift.
func (c *Config) Validate() error {
	if c.MaxClockDriftSeconds < 0 {
		return fmt.Errorf("MAX_CLOCK_DRIFT_SECONDS must be >= 0")
	}
	if c.MaxBodySizeBytes <= 0 {
		return fmt.Errorf("MAX_BODY_SIZE_BYTES must be > 0")
	}
	if c.MaxClockDriftSeconds > storage.NonceRetentionSeconds {
		return fmt.Errorf("MAX_CLOCK_DRIFT_SECONDS must not exceed the nonce retention window (%d)", storage.NonceRetentionSeconds)
	}
	if c.DatabasePath == "" {
		return fmt.Errorf("DATABASE_PATH must not be empty")
	}
	return nil
}
