// Package mock provides a deterministic in-process generation provider
// for tests and offline use.
package mock

import (
	"context"
	"sync"

	llmtypes "github.com/MichaelPaulukonis/job-posting-analyzer-sub000/pkg/types/llm"
)

const placeholderLetter = `Dear Hiring Manager,

This is placeholder letter text produced without a generation backend. Configure an API key for one of the real providers to generate a letter from your analysis.

Sincerely,
The Candidate`

// Provider implements llmtypes.Provider with scripted behavior.
type Provider struct {
	mu       sync.Mutex
	name     string
	generate func(ctx context.Context, req llmtypes.Request) (string, error)
	requests []llmtypes.Request
}

// Option configures a mock provider.
type Option func(*Provider)

// WithName overrides the provider name reported to the orchestrator.
func WithName(name string) Option {
	return func(p *Provider) { p.name = name }
}

// WithResponse makes every call return the given text.
func WithResponse(text string) Option {
	return func(p *Provider) {
		p.generate = func(context.Context, llmtypes.Request) (string, error) {
			return text, nil
		}
	}
}

// WithError makes every call fail with err.
func WithError(err error) Option {
	return func(p *Provider) {
		p.generate = func(context.Context, llmtypes.Request) (string, error) {
			return "", err
		}
	}
}

// WithGenerateFunc scripts arbitrary behavior.
func WithGenerateFunc(fn func(ctx context.Context, req llmtypes.Request) (string, error)) Option {
	return func(p *Provider) { p.generate = fn }
}

// New creates a mock provider. Without options it returns a fixed
// placeholder letter.
func New(opts ...Option) *Provider {
	p := &Provider{
		name: "mock",
		generate: func(context.Context, llmtypes.Request) (string, error) {
			return placeholderLetter, nil
		},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Provider) Name() string {
	return p.name
}

func (p *Provider) Generate(ctx context.Context, req llmtypes.Request) (string, error) {
	p.mu.Lock()
	p.requests = append(p.requests, req)
	p.mu.Unlock()
	return p.generate(ctx, req)
}

// Requests returns every request seen so far, in call order.
func (p *Provider) Requests() []llmtypes.Request {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]llmtypes.Request, len(p.requests))
	copy(out, p.requests)
	return out
}
