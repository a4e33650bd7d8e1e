package llm

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MichaelPaulukonis/job-posting-analyzer-sub000/pkg/llm/mock"
	llmtypes "github.com/MichaelPaulukonis/job-posting-analyzer-sub000/pkg/types/llm"
)

func testRequest() llmtypes.Request {
	return llmtypes.Request{
		SystemInstruction: "persona",
		Messages: []llmtypes.Message{
			{Role: "user", Content: "write a letter"},
		},
	}
}

func TestGenerateUsesPreferredProvider(t *testing.T) {
	anthropic := mock.New(mock.WithName("anthropic"), mock.WithResponse("from anthropic"))
	google := mock.New(mock.WithName("google"), mock.WithResponse("from google"))
	o := NewOrchestrator([]llmtypes.Provider{anthropic, google}, []string{"anthropic", "google"})

	text, err := o.Generate(context.Background(), "google", testRequest())
	require.NoError(t, err)

	assert.Equal(t, "from google", text)
	assert.Empty(t, anthropic.Requests())
	assert.Len(t, google.Requests(), 1)
}

func TestGenerateFallsBackOnOverload(t *testing.T) {
	google := mock.New(mock.WithName("google"), mock.WithError(errors.New("model is overloaded, try again later")))
	anthropic := mock.New(mock.WithName("anthropic"), mock.WithResponse("from anthropic"))
	fallback := mock.New(mock.WithName("mock"), mock.WithResponse("placeholder"))
	o := NewOrchestrator([]llmtypes.Provider{google, anthropic, fallback}, []string{"anthropic", "google", "mock"})

	text, err := o.Generate(context.Background(), "google", testRequest())
	require.NoError(t, err)

	assert.Equal(t, "from anthropic", text)
	assert.Len(t, google.Requests(), 1)
	assert.Empty(t, fallback.Requests(), "later providers must not be reached once one succeeds")
}

func TestGenerateFallsBackOn529(t *testing.T) {
	primary := mock.New(mock.WithName("anthropic"), mock.WithError(errors.New("HTTP 529 from upstream")))
	secondary := mock.New(mock.WithName("google"), mock.WithResponse("ok"))
	o := NewOrchestrator([]llmtypes.Provider{primary, secondary}, []string{"anthropic", "google"})

	text, err := o.Generate(context.Background(), "", testRequest())
	require.NoError(t, err)
	assert.Equal(t, "ok", text)
}

func TestGenerateFailsFastOnNonOverloadError(t *testing.T) {
	primary := mock.New(mock.WithName("anthropic"), mock.WithError(errors.New("invalid api key")))
	secondary := mock.New(mock.WithName("google"), mock.WithResponse("should not be used"))
	o := NewOrchestrator([]llmtypes.Provider{primary, secondary}, []string{"anthropic", "google"})

	_, err := o.Generate(context.Background(), "", testRequest())
	require.Error(t, err)

	assert.Contains(t, err.Error(), "invalid api key")
	assert.Empty(t, secondary.Requests(), "non-overload failures must not trigger fallback")

	var exhausted *llmtypes.ExhaustedError
	assert.False(t, errors.As(err, &exhausted))
}

func TestGenerateExhaustion(t *testing.T) {
	first := mock.New(mock.WithName("anthropic"), mock.WithError(errors.New("overloaded")))
	second := mock.New(mock.WithName("google"), mock.WithError(errors.New("error 529")))
	o := NewOrchestrator([]llmtypes.Provider{first, second}, []string{"anthropic", "google"})

	_, err := o.Generate(context.Background(), "", testRequest())
	require.Error(t, err)

	var exhausted *llmtypes.ExhaustedError
	require.True(t, errors.As(err, &exhausted))
	assert.Equal(t, []string{"anthropic", "google"}, exhausted.Attempted)
	assert.Contains(t, exhausted.Error(), "all generation services failed")
}

func TestGenerateSkipsUnregisteredProviders(t *testing.T) {
	only := mock.New(mock.WithName("mock"), mock.WithResponse("placeholder"))
	o := NewOrchestrator([]llmtypes.Provider{only}, []string{"anthropic", "google", "mock"})

	text, err := o.Generate(context.Background(), "", testRequest())
	require.NoError(t, err)
	assert.Equal(t, "placeholder", text)
}

func TestProvidersReportsRegisteredInFallbackOrder(t *testing.T) {
	a := mock.New(mock.WithName("anthropic"))
	m := mock.New(mock.WithName("mock"))
	o := NewOrchestrator([]llmtypes.Provider{m, a}, []string{"anthropic", "google", "mock"})

	assert.Equal(t, []string{"anthropic", "mock"}, o.Providers())
}

func TestIsOverloaded(t *testing.T) {
	assert.True(t, llmtypes.IsOverloaded(errors.New("Overloaded")))
	assert.True(t, llmtypes.IsOverloaded(errors.New("status 529")))
	assert.False(t, llmtypes.IsOverloaded(errors.New("rate limited")))
	assert.False(t, llmtypes.IsOverloaded(nil))
}

func TestNewOrchestratorFromConfigCanonicalizesGemini(t *testing.T) {
	cfg := llmtypes.Config{
		Provider:      "gemini",
		FallbackOrder: []string{"gemini", "mock"},
	}

	// No Google API key in the test environment, so only the mock
	// provider constructs; the orchestrator must still come up.
	o, err := NewOrchestratorFromConfig(context.Background(), cfg)
	require.NoError(t, err)
	assert.Contains(t, o.Providers(), "mock")
}
