// Package google adapts the Google GenAI API (Gemini) to the
// generation provider interface.
package google

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/pkg/errors"
	"google.golang.org/genai"

	"github.com/MichaelPaulukonis/job-posting-analyzer-sub000/pkg/logger"
	llmtypes "github.com/MichaelPaulukonis/job-posting-analyzer-sub000/pkg/types/llm"
)

const (
	defaultModel     = "gemini-2.5-pro"
	defaultMaxTokens = 4096
)

// Provider implements llmtypes.Provider for Gemini models.
type Provider struct {
	client      *genai.Client
	model       string
	maxTokens   int
	retryConfig llmtypes.RetryConfig
}

// New creates a Gemini provider. The API key comes from the config or
// the GEMINI_API_KEY / GOOGLE_API_KEY environment variables.
func New(ctx context.Context, cfg llmtypes.ProviderConfig, retryConfig llmtypes.RetryConfig) (*Provider, error) {
	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("GEMINI_API_KEY")
	}
	if apiKey == "" {
		apiKey = os.Getenv("GOOGLE_API_KEY")
	}
	if apiKey == "" {
		return nil, errors.New("gemini API key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		Backend: genai.BackendGeminiAPI,
		APIKey:  apiKey,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create Google GenAI client")
	}

	model := cfg.Model
	if model == "" {
		model = defaultModel
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	return &Provider{
		client:      client,
		model:       model,
		maxTokens:   maxTokens,
		retryConfig: retryConfig,
	}, nil
}

func (p *Provider) Name() string {
	return "google"
}

// Generate sends the request to GenerateContent and returns the
// response text.
func (p *Provider) Generate(ctx context.Context, req llmtypes.Request) (string, error) {
	contents := make([]*genai.Content, 0, len(req.Messages))
	for _, msg := range req.Messages {
		var role genai.Role
		switch msg.Role {
		case "user", "system":
			role = genai.RoleUser
		case "assistant":
			role = genai.RoleModel
		default:
			return "", errors.Errorf("unsupported message role: %s", msg.Role)
		}
		parts := []*genai.Part{genai.NewPartFromText(msg.Content)}
		contents = append(contents, genai.NewContentFromParts(parts, role))
	}

	config := &genai.GenerateContentConfig{
		MaxOutputTokens: int32(p.maxTokens),
	}
	if req.SystemInstruction != "" {
		config.SystemInstruction = genai.NewContentFromText(req.SystemInstruction, genai.RoleUser)
	}

	var response *genai.GenerateContentResponse
	err := p.executeWithRetry(ctx, func() error {
		var apiErr error
		response, apiErr = p.client.Models.GenerateContent(ctx, p.model, contents, config)
		return apiErr
	})
	if err != nil {
		return "", err
	}

	text := response.Text()
	if text == "" {
		return "", errors.New("gemini returned an empty response")
	}

	return text, nil
}

func isRetryableError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	errStr := strings.ToLower(err.Error())
	retryablePatterns := []string{
		"connection refused",
		"connection reset",
		"timeout",
		"temporary failure",
		"service unavailable",
		"internal error",
	}
	for _, pattern := range retryablePatterns {
		if strings.Contains(errStr, pattern) {
			return true
		}
	}
	return false
}

func (p *Provider) executeWithRetry(ctx context.Context, operation func() error) error {
	if p.retryConfig.Attempts == 0 {
		return operation()
	}

	initialDelay := time.Duration(p.retryConfig.InitialDelay) * time.Millisecond
	maxDelay := time.Duration(p.retryConfig.MaxDelay) * time.Millisecond

	var delayType retry.DelayTypeFunc
	switch p.retryConfig.BackoffType {
	case "fixed":
		delayType = retry.FixedDelay
	default:
		delayType = retry.BackOffDelay
	}

	return retry.Do(
		operation,
		retry.RetryIf(isRetryableError),
		retry.Attempts(uint(p.retryConfig.Attempts)),
		retry.Delay(initialDelay),
		retry.DelayType(delayType),
		retry.MaxDelay(maxDelay),
		retry.Context(ctx),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			logger.G(ctx).WithError(err).WithField("attempt", n+1).Warn("retrying Google GenAI API call")
		}),
	)
}
