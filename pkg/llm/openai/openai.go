// Package openai adapts the OpenAI chat completions API to the
// generation provider interface.
package openai

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/pkg/errors"
	openai "github.com/sashabaranov/go-openai"

	"github.com/MichaelPaulukonis/job-posting-analyzer-sub000/pkg/logger"
	llmtypes "github.com/MichaelPaulukonis/job-posting-analyzer-sub000/pkg/types/llm"
)

const (
	defaultModel     = "gpt-4o"
	defaultMaxTokens = 4096
)

// Provider implements llmtypes.Provider for OpenAI chat models.
type Provider struct {
	client      *openai.Client
	model       string
	maxTokens   int
	retryConfig llmtypes.RetryConfig
}

// New creates an OpenAI provider. The API key comes from the config or
// the OPENAI_API_KEY environment variable. BaseURL supports
// OpenAI-compatible endpoints.
func New(cfg llmtypes.ProviderConfig, retryConfig llmtypes.RetryConfig) (*Provider, error) {
	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	if apiKey == "" {
		return nil, errors.New("openai API key is required")
	}

	clientConfig := openai.DefaultConfig(apiKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
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
		client:      openai.NewClientWithConfig(clientConfig),
		model:       model,
		maxTokens:   maxTokens,
		retryConfig: retryConfig,
	}, nil
}

func (p *Provider) Name() string {
	return "openai"
}

// Generate sends the request as a chat completion and returns the first
// choice's content.
func (p *Provider) Generate(ctx context.Context, req llmtypes.Request) (string, error) {
	messages := make([]openai.ChatCompletionMessage, 0, len(req.Messages)+1)
	if req.SystemInstruction != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.SystemInstruction,
		})
	}

	for _, msg := range req.Messages {
		var role string
		switch msg.Role {
		case "user":
			role = openai.ChatMessageRoleUser
		case "assistant":
			role = openai.ChatMessageRoleAssistant
		case "system":
			role = openai.ChatMessageRoleSystem
		default:
			return "", errors.Errorf("unsupported message role: %s", msg.Role)
		}
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    role,
			Content: msg.Content,
		})
	}

	requestParams := openai.ChatCompletionRequest{
		Model:     p.model,
		Messages:  messages,
		MaxTokens: p.maxTokens,
	}

	var response openai.ChatCompletionResponse
	err := p.executeWithRetry(ctx, func() error {
		var apiErr error
		response, apiErr = p.client.CreateChatCompletion(ctx, requestParams)
		return apiErr
	})
	if err != nil {
		return "", err
	}

	if len(response.Choices) == 0 {
		return "", errors.New("openai returned no choices")
	}

	content := response.Choices[0].Message.Content
	if content == "" {
		return "", errors.New("openai returned an empty response")
	}

	return content, nil
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
			logger.G(ctx).WithError(err).WithField("attempt", n+1).Warn("retrying OpenAI API call")
		}),
	)
}
