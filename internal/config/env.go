package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// applyEnv overrides fields from environment variables.
func (c *Config) applyEnv() error {
	var err error
	setString := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	setInt := func(key string, dst *int) {
		if v := os.Getenv(key); v != "" && err == nil {
			n, convErr := strconv.Atoi(v)
			if convErr != nil {
				err = fmt.Errorf("invalid %s: %w", key, convErr)
				return
			}
			*dst = n
		}
	}
	setBool := func(key string, dst *bool) {
		if v := os.Getenv(key); v != "" && err == nil {
			b, convErr := strconv.ParseBool(v)
			if convErr != nil {
				err = fmt.Errorf("invalid %s: %w", key, convErr)
				return
			}
			*dst = b
		}
	}
	setDuration := func(key string, dst *Duration) {
		if v := os.Getenv(key); v != "" && err == nil {
			d, convErr := time.ParseDuration(v)
			if convErr != nil {
				err = fmt.Errorf("invalid %s: %w", key, convErr)
				return
			}
			*dst = Duration(d)
		}
	}

	setInt("PORT", &c.Port)
	setString("STORE_DRIVER", &c.StoreDriver)
	setString("DATABASE_URL", &c.DatabaseURL)
	setString("SQLITE_PATH", &c.SQLitePath)
	setDuration("CACHE_TTL", &c.CacheTTL)
	setString("GEMINI_API_KEY", &c.APIKey)
	setString("GEMINI_MODEL", &c.Model)
	setString("GEMINI_FALLBACK_MODEL", &c.FallbackModel)
	setDuration("GENERATION_TIMEOUT", &c.GenerationTimeout)
	setInt("GENERATION_MAX_ATTEMPTS", &c.GenerationMaxAttempts)
	setDuration("GENERATION_BASE_DELAY", &c.GenerationBaseDelay)
	setDuration("REMOTE_FETCH_TIMEOUT", &c.RemoteFetchTimeout)
	setBool("USE_BROWSER", &c.UseBrowser)
	setBool("VERBOSE", &c.Verbose)
	return err
}
