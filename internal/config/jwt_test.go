package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewJWTConfig_DefaultValues(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret-key")
	t.Setenv("JWT_EXPIRATION_HOURS", "")
	t.Setenv("JWT_REFRESH_EXPIRATION_HOURS", "")

	cfg, err := NewJWTConfig()
	require.NoError(t, err)
	assert.Equal(t, "test-secret-key", cfg.Secret)
	assert.Equal(t, 24, cfg.ExpirationHours, "should use default expiration of 24 hours")
	assert.Equal(t, 720, cfg.RefreshExpirationHours)
}

func TestNewJWTConfig_MissingSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := NewJWTConfig()
	assert.ErrorContains(t, err, "JWT_SECRET is required")
}

func TestNewJWTConfig_Expirations(t *testing.T) {
	tests := []struct {
		name       string
		expiration string
		refresh    string
		wantAccess int
		wantErr    bool
	}{
		{name: "custom", expiration: "48", refresh: "96", wantAccess: 48},
		{name: "not a number", expiration: "abc", wantErr: true},
		{name: "zero", expiration: "0", wantErr: true},
		{name: "negative", expiration: "-1", wantErr: true},
		{name: "refresh shorter than access", expiration: "48", refresh: "24", wantErr: true},
		{name: "bad refresh", refresh: "later", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("JWT_SECRET", "test-secret-key")
			t.Setenv("JWT_EXPIRATION_HOURS", tt.expiration)
			t.Setenv("JWT_REFRESH_EXPIRATION_HOURS", tt.refresh)

			cfg, err := NewJWTConfig()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantAccess, cfg.ExpirationHours)
		})
	}
}
