package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	assert.Equal(t, ProviderGemini, config.Provider)
	assert.Equal(t, "gemini-2.5-flash", config.GetModel(TierStandard))
	assert.Equal(t, "gemini-2.5-flash-lite", config.GetModel(TierLite))
	assert.Equal(t, DefaultTemperature, config.Temperature)
}

func TestNewConfig_NoFallback(t *testing.T) {
	config := NewConfig("primary-model", "")

	// Lite resolves to the primary when no fallback is configured
	assert.Equal(t, "primary-model", config.GetModel(TierLite))
}

func TestGetModel_Fallback(t *testing.T) {
	config := &Config{
		Provider: ProviderGemini,
		Models: map[ModelTier]string{
			TierLite: "fallback-model",
		},
	}

	assert.Equal(t, "fallback-model", config.GetModel("unknown"))
	assert.Equal(t, "fallback-model", config.GetModel(TierStandard))
}

func TestGetModel_EmptyConfig(t *testing.T) {
	config := NewConfig("", "")
	assert.Equal(t, "", config.GetModel(TierStandard))
}

func TestWithModel(t *testing.T) {
	config := DefaultConfig()
	newConfig := config.WithModel(TierLite, "custom-model")

	// Original should be unchanged
	assert.Equal(t, "gemini-2.5-flash-lite", config.GetModel(TierLite))
	assert.Equal(t, "custom-model", newConfig.GetModel(TierLite))
	assert.Equal(t, "gemini-2.5-flash", newConfig.GetModel(TierStandard))
}
