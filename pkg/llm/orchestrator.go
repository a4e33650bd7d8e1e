// Package llm provides the multi-provider generation orchestrator and
// the factory that builds provider adapters from configuration.
package llm

import (
	"context"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"

	"github.com/MichaelPaulukonis/job-posting-analyzer-sub000/pkg/logger"
	"github.com/MichaelPaulukonis/job-posting-analyzer-sub000/pkg/telemetry"
	llmtypes "github.com/MichaelPaulukonis/job-posting-analyzer-sub000/pkg/types/llm"
)

// Orchestrator walks an ordered provider list until one generation
// succeeds. Providers are tried strictly sequentially, never raced.
type Orchestrator struct {
	providers     map[string]llmtypes.Provider
	fallbackOrder []string
}

// NewOrchestrator creates an orchestrator over the given providers.
// fallbackOrder is the priority list used when no preferred provider is
// requested; names without a registered provider are skipped at
// generation time.
func NewOrchestrator(providers []llmtypes.Provider, fallbackOrder []string) *Orchestrator {
	byName := make(map[string]llmtypes.Provider, len(providers))
	for _, p := range providers {
		byName[p.Name()] = p
	}
	if len(fallbackOrder) == 0 {
		fallbackOrder = llmtypes.DefaultFallbackOrder
	}
	return &Orchestrator{
		providers:     byName,
		fallbackOrder: fallbackOrder,
	}
}

// Providers returns the names of the registered providers.
func (o *Orchestrator) Providers() []string {
	names := make([]string, 0, len(o.providers))
	for _, name := range o.fallbackOrder {
		if _, ok := o.providers[name]; ok {
			names = append(names, name)
		}
	}
	return names
}

// Generate tries providers in order, starting with preferred, and
// returns the first successful text. An overloaded provider falls
// through to the next one; any other failure is surfaced immediately
// because switching providers cannot fix bad credentials or a
// malformed request and would only hide the configuration bug. When
// every provider is exhausted the returned error is an
// *llmtypes.ExhaustedError aggregating the individual failures.
func (o *Orchestrator) Generate(ctx context.Context, preferred string, req llmtypes.Request) (string, error) {
	order := o.walkOrder(preferred)

	var failures *multierror.Error
	var attempted []string

	for _, name := range order {
		provider, ok := o.providers[name]
		if !ok {
			logger.G(ctx).WithField("provider", name).Warn("provider not configured, skipping")
			continue
		}

		attempted = append(attempted, name)

		var text string
		err := telemetry.WithSpan(ctx, "llm.generate", func(ctx context.Context) error {
			var genErr error
			text, genErr = provider.Generate(ctx, req)
			return genErr
		}, attribute.String("provider", name))

		if err == nil {
			logger.G(ctx).WithField("provider", name).Debug("generation succeeded")
			return text, nil
		}

		if !llmtypes.IsOverloaded(err) {
			return "", errors.Wrapf(err, "provider %s failed", name)
		}

		logger.G(ctx).WithError(err).WithField("provider", name).Warn("provider overloaded, falling back")
		failures = multierror.Append(failures, errors.Wrap(err, name))
	}

	return "", &llmtypes.ExhaustedError{
		Attempted: attempted,
		Err:       failures.ErrorOrNil(),
	}
}

// walkOrder places the preferred provider first, followed by the
// fallback order with the preferred entry removed.
func (o *Orchestrator) walkOrder(preferred string) []string {
	if preferred == "" {
		return o.fallbackOrder
	}
	order := make([]string, 0, len(o.fallbackOrder)+1)
	order = append(order, preferred)
	for _, name := range o.fallbackOrder {
		if name != preferred {
			order = append(order, name)
		}
	}
	return order
}
