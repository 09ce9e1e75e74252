// Package config provides configuration loading and validation.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Store drivers
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMemory   = "memory"
)

// Duration is a time.Duration that reads from JSON as a string such as "90s".
type Duration time.Duration

// UnmarshalJSON accepts a duration string or a number of nanoseconds.
func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		v, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", s, err)
		}
		*d = Duration(v)
		return nil
	}
	var n int64
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid duration %s", data)
	}
	*d = Duration(n)
	return nil
}

// MarshalJSON writes the duration as a string.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// Config represents the service configuration. Values come from an optional
// JSON file and are then overridden by environment variables.
type Config struct {
	Port int `json:"port,omitempty"`

	// Storage
	StoreDriver string   `json:"store_driver,omitempty"` // postgres, sqlite or memory
	DatabaseURL string   `json:"database_url,omitempty"` // PostgreSQL connection URL
	SQLitePath  string   `json:"sqlite_path,omitempty"`  // SQLite database file
	CacheTTL    Duration `json:"cache_ttl,omitempty"`    // How long generated results are reused

	// Model
	APIKey                string   `json:"api_key,omitempty"` // Gemini API key; empty leaves generation unconfigured
	Model                 string   `json:"model,omitempty"`
	FallbackModel         string   `json:"fallback_model,omitempty"`
	GenerationTimeout     Duration `json:"generation_timeout,omitempty"` // Per attempt
	GenerationMaxAttempts int      `json:"generation_max_attempts,omitempty"`
	GenerationBaseDelay   Duration `json:"generation_base_delay,omitempty"`

	// Remote pages
	RemoteFetchTimeout Duration `json:"remote_fetch_timeout,omitempty"`
	UseBrowser         bool     `json:"use_browser,omitempty"` // Use headless browser for SPA sites

	Verbose bool `json:"verbose,omitempty"` // Debug logging
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Port:                  8080,
		SQLitePath:            "jobscout.db",
		CacheTTL:              Duration(7 * 24 * time.Hour),
		Model:                 "gemini-2.5-flash",
		FallbackModel:         "gemini-2.5-flash-lite",
		GenerationTimeout:     Duration(90 * time.Second),
		GenerationMaxAttempts: 3,
		GenerationBaseDelay:   Duration(time.Second),
		RemoteFetchTimeout:    Duration(10 * time.Second),
	}
}

// LoadConfig loads configuration from a JSON file over the defaults.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	cfg := Default()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return cfg, nil
}

// Load reads the optional file at path, applies environment overrides and
// validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		var err error
		if cfg, err = LoadConfig(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if cfg.StoreDriver == "" {
		cfg.StoreDriver = DriverSQLite
		if cfg.DatabaseURL != "" {
			cfg.StoreDriver = DriverPostgres
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("config error: 'port' must be between 0 and 65535")
	}

	switch c.StoreDriver {
	case "", DriverSQLite, DriverMemory:
	case DriverPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("config error: 'database_url' is required for the postgres store")
		}
	default:
		return fmt.Errorf("config error: unknown store driver %q", c.StoreDriver)
	}

	durations := map[string]Duration{
		"cache_ttl":             c.CacheTTL,
		"generation_timeout":    c.GenerationTimeout,
		"generation_base_delay": c.GenerationBaseDelay,
		"remote_fetch_timeout":  c.RemoteFetchTimeout,
	}
	for name, d := range durations {
		if d < 0 {
			return fmt.Errorf("config error: '%s' must be non-negative", name)
		}
	}

	if c.GenerationMaxAttempts < 1 {
		return fmt.Errorf("config error: 'generation_max_attempts' must be at least 1")
	}
	return nil
}

// ModelConfigured reports whether a model API key is available.
func (c *Config) ModelConfigured() bool {
	return c.APIKey != ""
}
