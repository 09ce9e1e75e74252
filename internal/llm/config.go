// Package llm wraps the generative model provider behind a small client
// interface with buffered and streamed JSON generation.
package llm

// ModelTier selects which configured model serves a call.
type ModelTier string

const (
	// TierStandard is the primary generation model.
	TierStandard ModelTier = "standard"
	// TierLite is the cheaper fallback model, used when the primary keeps failing.
	TierLite ModelTier = "lite"
)

// Provider represents an LLM provider
type Provider string

// ProviderGemini is the Google Gemini provider
const ProviderGemini Provider = "gemini"

// DefaultTemperature keeps structured output stable across retries.
const DefaultTemperature float32 = 0.2

// Config holds the model configuration for the application
type Config struct {
	Provider    Provider
	Models      map[ModelTier]string
	Temperature float32
}

// DefaultConfig returns the default Gemini configuration
func DefaultConfig() *Config {
	return NewConfig("gemini-2.5-flash", "gemini-2.5-flash-lite")
}

// NewConfig builds a Gemini configuration from a primary and a fallback model name.
// An empty fallback leaves TierLite unset, so GetModel resolves it to the primary.
func NewConfig(primary, fallback string) *Config {
	models := map[ModelTier]string{}
	if primary != "" {
		models[TierStandard] = primary
	}
	if fallback != "" {
		models[TierLite] = fallback
	}
	return &Config{
		Provider:    ProviderGemini,
		Models:      models,
		Temperature: DefaultTemperature,
	}
}

// GetModel returns the model name for a given tier
func (c *Config) GetModel(tier ModelTier) string {
	if model, ok := c.Models[tier]; ok {
		return model
	}
	// Fallback chain: try standard, then lite
	if model, ok := c.Models[TierStandard]; ok {
		return model
	}
	if model, ok := c.Models[TierLite]; ok {
		return model
	}
	return ""
}

// WithModel returns a new Config with a specific model for a tier
func (c *Config) WithModel(tier ModelTier, model string) *Config {
	newConfig := &Config{
		Provider:    c.Provider,
		Models:      make(map[ModelTier]string, len(c.Models)+1),
		Temperature: c.Temperature,
	}
	for k, v := range c.Models {
		newConfig.Models[k] = v
	}
	newConfig.Models[tier] = model
	return newConfig
}
