package llm

import (
	"fmt"
	"time"
)

// Config holds all LLM provider configuration.
type Config struct {
	// Provider forces a single provider. Empty means automatic selection
	// in ProviderOrder.
	Provider string

	Groq      ProviderConfig
	OpenAI    ProviderConfig
	Gemini    ProviderConfig
	Anthropic ProviderConfig

	Retry     RetryConfig
	RateLimit RateLimitConfig
}

// ProviderConfig holds per-provider settings.
type ProviderConfig struct {
	APIKey  string
	Model   string
	BaseURL string // Optional. Only honoured by OpenAI-compatible providers.
}

// RetryConfig configures retry behavior for transient failures.
type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

// RateLimitConfig bounds request rate per provider.
// A zero RequestsPerMinute disables limiting.
type RateLimitConfig struct {
	RequestsPerMinute int
	Burst             int
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Groq:      ProviderConfig{Model: "llama-3.3-70b"},
		OpenAI:    ProviderConfig{Model: "gpt-4o-mini"},
		Gemini:    ProviderConfig{Model: "gemini-flash"},
		Anthropic: ProviderConfig{Model: "claude-haiku"},
		Retry: RetryConfig{
			MaxAttempts: 3,
			InitialWait: 1 * time.Second,
			MaxWait:     10 * time.Second,
			Multiplier:  2.0,
		},
		RateLimit: RateLimitConfig{
			RequestsPerMinute: 30,
			Burst:             3,
		},
	}
}

// For returns the settings of the named provider.
func (c Config) For(name string) (ProviderConfig, error) {
	switch name {
	case ProviderGroq:
		return c.Groq, nil
	case ProviderOpenAI:
		return c.OpenAI, nil
	case ProviderGemini:
		return c.Gemini, nil
	case ProviderAnthropic:
		return c.Anthropic, nil
	}
	return ProviderConfig{}, fmt.Errorf("%w: %q", ErrUnknownProvider, name)
}

// Validate checks that the forced provider, if any, is a known name.
// Missing API keys are not an error here; the registry reports them.
func (c Config) Validate() error {
	if c.Provider != "" && !KnownProvider(c.Provider) {
		return fmt.Errorf("%w: %q", ErrUnknownProvider, c.Provider)
	}
	if c.Retry.MaxAttempts < 1 {
		return fmt.Errorf("retry attempts must be at least 1, got %d", c.Retry.MaxAttempts)
	}
	return nil
}
