package mock

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	llmtypes "github.com/MichaelPaulukonis/job-posting-analyzer-sub000/pkg/types/llm"
)

func TestDefaultReturnsPlaceholder(t *testing.T) {
	p := New()

	text, err := p.Generate(context.Background(), llmtypes.Request{})
	require.NoError(t, err)

	assert.Equal(t, "mock", p.Name())
	assert.Contains(t, text, "placeholder letter text")
}

func TestWithResponseAndName(t *testing.T) {
	p := New(mockOpts("anthropic", "scripted text")...)

	text, err := p.Generate(context.Background(), llmtypes.Request{})
	require.NoError(t, err)

	assert.Equal(t, "anthropic", p.Name())
	assert.Equal(t, "scripted text", text)
}

func mockOpts(name, response string) []Option {
	return []Option{WithName(name), WithResponse(response)}
}

func TestWithError(t *testing.T) {
	p := New(WithError(errors.New("overloaded")))

	_, err := p.Generate(context.Background(), llmtypes.Request{})
	assert.EqualError(t, err, "overloaded")
}

func TestRecordsRequests(t *testing.T) {
	p := New()
	req := llmtypes.Request{
		SystemInstruction: "persona",
		Messages:          []llmtypes.Message{{Role: "user", Content: "hi"}},
	}

	_, err := p.Generate(context.Background(), req)
	require.NoError(t, err)
	_, err = p.Generate(context.Background(), req)
	require.NoError(t, err)

	requests := p.Requests()
	require.Len(t, requests, 2)
	assert.Equal(t, "persona", requests[0].SystemInstruction)
}
