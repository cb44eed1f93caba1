// Package llm provides the model configuration and client used to draft training scenarios.
package llm

// ModelTier represents the complexity/capability level of a model
type ModelTier string

const (
	// TierLite is for short drafts from small decks
	TierLite ModelTier = "lite"
	// TierStandard is the default for scenario drafting
	TierStandard ModelTier = "standard"
	// TierAdvanced is for long decks that need more context
	TierAdvanced ModelTier = "advanced"
)

// Provider represents an LLM provider
type Provider string

// ProviderGemini is the Google Gemini provider, the only one implemented
const ProviderGemini Provider = "gemini"

// DefaultTemperature keeps drafts close to the source material
const DefaultTemperature float32 = 0.2

// DefaultMaxOutputTokens bounds one drafted scenario set
const DefaultMaxOutputTokens int32 = 8192

// Config holds the model configuration for the application
type Config struct {
	Provider    Provider
	Models      map[ModelTier]string
	Temperature float32
	// MaxOutputTokens of zero leaves the provider default
	MaxOutputTokens int32
}

// DefaultConfig returns the default configuration (currently Gemini)
func DefaultConfig() *Config {
	return DefaultGeminiConfig()
}

// DefaultGeminiConfig returns the default Gemini configuration
func DefaultGeminiConfig() *Config {
	return &Config{
		Provider: ProviderGemini,
		Models: map[ModelTier]string{
			TierLite:     "gemini-2.5-flash-lite",
			TierStandard: "gemini-2.5-flash",
			TierAdvanced: "gemini-2.5-pro",
		},
		Temperature:     DefaultTemperature,
		MaxOutputTokens: DefaultMaxOutputTokens,
	}
}

func (c *Config) temperature() float32 {
	if c.Temperature == 0 {
		return DefaultTemperature
	}
	return c.Temperature
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
	clone := *c
	clone.Models = make(map[ModelTier]string, len(c.Models)+1)
	for k, v := range c.Models {
		clone.Models[k] = v
	}
	clone.Models[tier] = model
	return &clone
}

// TierForText picks a tier from the amount of source text
func TierForText(chars int) ModelTier {
	switch {
	case chars < 2000:
		return TierLite
	case chars > 40000:
		return TierAdvanced
	default:
		return TierStandard
	}
}
