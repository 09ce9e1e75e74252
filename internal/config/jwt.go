package config

import (
	"fmt"
	"os"
	"strconv"
)

// JWTConfig holds configuration for JWT token generation and validation.
type JWTConfig struct {
	Secret                 string
	ExpirationHours        int
	RefreshExpirationHours int
}

// NewJWTConfig creates a new JWT configuration from environment variables.
// It reads JWT_SECRET (required), JWT_EXPIRATION_HOURS (default: 24) and
// JWT_REFRESH_EXPIRATION_HOURS (default: 720).
func NewJWTConfig() (*JWTConfig, error) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required but not set")
	}

	expirationHours, err := hoursFromEnv("JWT_EXPIRATION_HOURS", 24)
	if err != nil {
		return nil, err
	}
	refreshHours, err := hoursFromEnv("JWT_REFRESH_EXPIRATION_HOURS", 720)
	if err != nil {
		return nil, err
	}

	config := &JWTConfig{
		Secret:                 secret,
		ExpirationHours:        expirationHours,
		RefreshExpirationHours: refreshHours,
	}

	if err := config.normalize(); err != nil {
		return nil, err
	}

	return config, nil
}

func hoursFromEnv(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	hours, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %v", key, err)
	}
	return hours, nil
}

// normalize validates the configuration.
func (c *JWTConfig) normalize() error {
	if c.Secret == "" {
		return fmt.Errorf("JWT_SECRET cannot be empty")
	}
	if c.ExpirationHours < 1 {
		return fmt.Errorf("JWT_EXPIRATION_HOURS must be at least 1 hour, got: %d", c.ExpirationHours)
	}
	if c.RefreshExpirationHours < c.ExpirationHours {
		return fmt.Errorf("JWT_REFRESH_EXPIRATION_HOURS must be at least JWT_EXPIRATION_HOURS, got: %d", c.RefreshExpirationHours)
	}
	return nil
}
