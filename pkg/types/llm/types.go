// Package llm defines the provider-agnostic generation types shared by
// the orchestrator and the per-backend adapters.
package llm

import "context"

// Message is the wire shape consumed by generation backends. Metadata
// from the conversation model is stripped before messages reach here.
type Message struct {
	Role    string `json:"role"` // "system", "user" or "assistant"
	Content string `json:"content"`
}

// Request is one generation call: a system instruction plus an ordered
// list of role-tagged messages.
type Request struct {
	SystemInstruction string    `json:"systemInstruction"`
	Messages          []Message `json:"messages"`
}

// Provider is the capability interface every backend adapter
// implements. Generate returns the generated text or an error that the
// orchestrator classifies.
type Provider interface {
	Name() string
	Generate(ctx context.Context, req Request) (string, error)
}

// RetryConfig controls in-provider retry of transient failures.
// Delays are in milliseconds.
type RetryConfig struct {
	Attempts     int    `mapstructure:"attempts" json:"attempts"`
	InitialDelay int    `mapstructure:"initial_delay" json:"initialDelay"`
	MaxDelay     int    `mapstructure:"max_delay" json:"maxDelay"`
	BackoffType  string `mapstructure:"backoff_type" json:"backoffType"` // "fixed" or "exponential"
}

// DefaultRetryConfig is applied when no retry settings are configured.
var DefaultRetryConfig = RetryConfig{
	Attempts:     3,
	InitialDelay: 1000,
	MaxDelay:     10000,
	BackoffType:  "exponential",
}

// ProviderConfig holds the per-backend settings.
type ProviderConfig struct {
	Model     string `mapstructure:"model" json:"model"`
	APIKey    string `mapstructure:"api_key" json:"-"`
	BaseURL   string `mapstructure:"base_url" json:"baseUrl,omitempty"`
	MaxTokens int    `mapstructure:"max_tokens" json:"maxTokens"`
}

// Config is the generation layer configuration: the preferred provider,
// the fallback walk order, and per-backend settings.
type Config struct {
	Provider      string         `mapstructure:"provider" json:"provider"`
	FallbackOrder []string       `mapstructure:"fallback_order" json:"fallbackOrder"`
	Anthropic     ProviderConfig `mapstructure:"anthropic" json:"anthropic"`
	OpenAI        ProviderConfig `mapstructure:"openai" json:"openai"`
	Google        ProviderConfig `mapstructure:"google" json:"google"`
	Retry         RetryConfig    `mapstructure:"retry" json:"retry"`
}

// DefaultFallbackOrder is the provider priority list used when none is
// configured.
var DefaultFallbackOrder = []string{"anthropic", "google", "openai", "mock"}
