package llm

import (
	"context"

	"github.com/pkg/errors"

	"github.com/MichaelPaulukonis/job-posting-analyzer-sub000/pkg/llm/anthropic"
	"github.com/MichaelPaulukonis/job-posting-analyzer-sub000/pkg/llm/google"
	"github.com/MichaelPaulukonis/job-posting-analyzer-sub000/pkg/llm/mock"
	"github.com/MichaelPaulukonis/job-posting-analyzer-sub000/pkg/llm/openai"
	"github.com/MichaelPaulukonis/job-posting-analyzer-sub000/pkg/logger"
	llmtypes "github.com/MichaelPaulukonis/job-posting-analyzer-sub000/pkg/types/llm"
)

// NewProvider builds a single provider adapter by name.
func NewProvider(ctx context.Context, name string, cfg llmtypes.Config) (llmtypes.Provider, error) {
	retry := cfg.Retry
	if retry.Attempts == 0 {
		retry = llmtypes.DefaultRetryConfig
	}

	switch name {
	case "anthropic":
		return anthropic.New(cfg.Anthropic, retry)
	case "openai":
		return openai.New(cfg.OpenAI, retry)
	case "google", "gemini":
		return google.New(ctx, cfg.Google, retry)
	case "mock":
		return mock.New(), nil
	default:
		return nil, errors.Errorf("unsupported provider: %s", name)
	}
}

// NewOrchestratorFromConfig constructs every provider named in the
// fallback order (plus the preferred provider) and wires them into an
// orchestrator. Providers that cannot be constructed, typically for a
// missing API key, are logged and omitted; at least one provider must
// construct successfully.
func NewOrchestratorFromConfig(ctx context.Context, cfg llmtypes.Config) (*Orchestrator, error) {
	order := cfg.FallbackOrder
	if len(order) == 0 {
		order = llmtypes.DefaultFallbackOrder
	}
	order = canonicalNames(order)

	names := make([]string, 0, len(order)+1)
	seen := make(map[string]bool)
	if cfg.Provider != "" {
		preferred := canonicalName(cfg.Provider)
		names = append(names, preferred)
		seen[preferred] = true
	}
	for _, name := range order {
		if !seen[name] {
			names = append(names, name)
			seen[name] = true
		}
	}

	var providers []llmtypes.Provider
	for _, name := range names {
		provider, err := NewProvider(ctx, name, cfg)
		if err != nil {
			logger.G(ctx).WithError(err).WithField("provider", name).Warn("provider unavailable")
			continue
		}
		providers = append(providers, provider)
	}

	if len(providers) == 0 {
		return nil, errors.New("no generation providers could be configured")
	}

	return NewOrchestrator(providers, order), nil
}

// canonicalName maps provider aliases to the name the adapter reports.
func canonicalName(name string) string {
	if name == "gemini" {
		return "google"
	}
	return name
}

func canonicalNames(names []string) []string {
	out := make([]string, len(names))
	for i, name := range names {
		out[i] = canonicalName(name)
	}
	return out
}
