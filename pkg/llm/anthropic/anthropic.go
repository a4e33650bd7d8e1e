// Package anthropic adapts the Anthropic Messages API to the generation
// provider interface.
package anthropic

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/avast/retry-go/v4"
	"github.com/pkg/errors"

	"github.com/MichaelPaulukonis/job-posting-analyzer-sub000/pkg/logger"
	llmtypes "github.com/MichaelPaulukonis/job-posting-analyzer-sub000/pkg/types/llm"
)

const (
	defaultModel     = string(anthropic.ModelClaude3_7SonnetLatest)
	defaultMaxTokens = 4096
)

// Provider implements llmtypes.Provider for Anthropic Claude.
type Provider struct {
	client      anthropic.Client
	model       string
	maxTokens   int
	retryConfig llmtypes.RetryConfig
}

// New creates an Anthropic provider. The API key comes from the config
// or the ANTHROPIC_API_KEY environment variable; without one the
// provider cannot be constructed.
func New(cfg llmtypes.ProviderConfig, retryConfig llmtypes.RetryConfig) (*Provider, error) {
	var opts []option.RequestOption
	if cfg.APIKey != "" {
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
	} else if os.Getenv("ANTHROPIC_API_KEY") == "" {
		return nil, errors.New("anthropic API key is required")
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
		client:      anthropic.NewClient(opts...),
		model:       model,
		maxTokens:   maxTokens,
		retryConfig: retryConfig,
	}, nil
}

func (p *Provider) Name() string {
	return "anthropic"
}

// Generate sends the request to the Messages API and returns the
// concatenated text blocks of the response.
func (p *Provider) Generate(ctx context.Context, req llmtypes.Request) (string, error) {
	systemText := req.SystemInstruction

	messages := make([]anthropic.MessageParam, 0, len(req.Messages))
	for _, msg := range req.Messages {
		switch msg.Role {
		case "user":
			messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(msg.Content)))
		case "assistant":
			messages = append(messages, anthropic.NewAssistantMessage(anthropic.NewTextBlock(msg.Content)))
		case "system":
			// The Messages API takes system text out of band.
			if systemText == "" {
				systemText = msg.Content
			} else {
				systemText += "\n\n" + msg.Content
			}
		default:
			return "", errors.Errorf("unsupported message role: %s", msg.Role)
		}
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(p.model),
		MaxTokens: int64(p.maxTokens),
		Messages:  messages,
	}
	if systemText != "" {
		params.System = []anthropic.TextBlockParam{{Text: systemText}}
	}

	var message *anthropic.Message
	err := p.executeWithRetry(ctx, func() error {
		var apiErr error
		message, apiErr = p.client.Messages.New(ctx, params)
		return apiErr
	})
	if err != nil {
		return "", err
	}

	var text strings.Builder
	for _, block := range message.Content {
		if textBlock, ok := block.AsAny().(anthropic.TextBlock); ok {
			text.WriteString(textBlock.Text)
		}
	}
	if text.Len() == 0 {
		return "", errors.New("anthropic returned an empty response")
	}

	return text.String(), nil
}

// isRetryableError covers transient transport failures worth retrying
// in place. Overload errors are excluded on purpose: they should reach
// the orchestrator promptly so it can fall back to another provider.
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
			logger.G(ctx).WithError(err).WithField("attempt", n+1).Warn("retrying Anthropic API call")
		}),
	)
}
