package generate

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MichaelPaulukonis/job-posting-analyzer-sub000/pkg/conversations"
	"github.com/MichaelPaulukonis/job-posting-analyzer-sub000/pkg/prompt"
	convtypes "github.com/MichaelPaulukonis/job-posting-analyzer-sub000/pkg/types/conversations"
	llmtypes "github.com/MichaelPaulukonis/job-posting-analyzer-sub000/pkg/types/llm"
)

type scriptedOrchestrator struct {
	response  string
	err       error
	requests  []llmtypes.Request
	preferred []string
}

func (s *scriptedOrchestrator) Generate(ctx context.Context, preferred string, req llmtypes.Request) (string, error) {
	s.requests = append(s.requests, req)
	s.preferred = append(s.preferred, preferred)
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

func newTestEngine(t *testing.T, orchestrator Orchestrator, opts Options) (*Engine, *conversations.Service) {
	t.Helper()
	store, err := conversations.NewJSONConversationStore(t.TempDir())
	require.NoError(t, err)
	service := conversations.NewService(store)
	return NewEngine(orchestrator, service, opts), service
}

func testAnalysis() *convtypes.AnalysisResult {
	return &convtypes.AnalysisResult{
		ID: "analysis-1",
		JobPosting: convtypes.JobPosting{
			Title:   "Staff Engineer",
			Content: "We are hiring.",
		},
		Resume:  convtypes.Resume{Content: "Ten years of Go."},
		Matches: []string{"Go experience"},
	}
}

func TestGenerateFirstIteration(t *testing.T) {
	orchestrator := &scriptedOrchestrator{response: "Dear Hiring Manager, first draft."}
	engine, service := newTestEngine(t, orchestrator, Options{Provider: "anthropic"})
	ctx := context.Background()

	result, err := engine.Generate(ctx, Request{
		Analysis:    testAnalysis(),
		Instruction: "write the first draft",
	})
	require.NoError(t, err)

	assert.Equal(t, "Dear Hiring Manager, first draft.", result.Letter)
	assert.False(t, result.EditsDetected)
	assert.False(t, result.Compressed)
	assert.Equal(t, []string{"anthropic"}, orchestrator.preferred)

	require.Len(t, orchestrator.requests, 1)
	req := orchestrator.requests[0]
	assert.Equal(t, prompt.SystemPersona, req.SystemInstruction)
	require.Len(t, req.Messages, 2)
	assert.Contains(t, req.Messages[0].Content, "Staff Engineer")
	assert.Equal(t, "write the first draft", req.Messages[1].Content)

	record, err := service.Get(ctx, result.ConversationID)
	require.NoError(t, err)
	require.Len(t, record.Messages, 2)
	assert.Equal(t, "Dear Hiring Manager, first draft.", record.CurrentContent)
}

func TestGenerateContinuesConversation(t *testing.T) {
	orchestrator := &scriptedOrchestrator{response: "draft"}
	engine, _ := newTestEngine(t, orchestrator, Options{})
	ctx := context.Background()

	first, err := engine.Generate(ctx, Request{
		Analysis:    testAnalysis(),
		Instruction: "write the first draft",
	})
	require.NoError(t, err)

	second, err := engine.Generate(ctx, Request{
		Analysis:    testAnalysis(),
		Instruction: "make it shorter",
	})
	require.NoError(t, err)

	assert.Equal(t, first.ConversationID, second.ConversationID)

	// The second request carries the earlier exchange as history.
	req := orchestrator.requests[1]
	require.Len(t, req.Messages, 4)
	assert.Equal(t, "write the first draft", req.Messages[1].Content)
	assert.Equal(t, "make it shorter", req.Messages[3].Content)
}

func TestGenerateDetectsManualEdits(t *testing.T) {
	orchestrator := &scriptedOrchestrator{response: "I am excited to apply."}
	engine, service := newTestEngine(t, orchestrator, Options{})
	ctx := context.Background()

	first, err := engine.Generate(ctx, Request{
		Analysis:    testAnalysis(),
		Instruction: "write the first draft",
	})
	require.NoError(t, err)

	result, err := engine.Generate(ctx, Request{
		ConversationID: first.ConversationID,
		Instruction:    "keep my wording",
		CurrentContent: "I am thrilled to apply.",
	})
	require.NoError(t, err)

	assert.True(t, result.EditsDetected)

	// The edited text is surfaced to the model as the reference version.
	last := orchestrator.requests[1].Messages
	assert.Contains(t, last[len(last)-1].Content, "REFERENCE VERSION")
	assert.Contains(t, last[len(last)-1].Content, "I am thrilled to apply.")

	record, err := service.Get(ctx, result.ConversationID)
	require.NoError(t, err)
	require.Len(t, record.EditHistory, 1)
	require.Len(t, record.EditHistory[0].Edits, 2)
	assert.Equal(t, "excited", record.EditHistory[0].Edits[0].Value)
	assert.Equal(t, "thrilled", record.EditHistory[0].Edits[1].Value)
}

func TestGenerateSwitchesToCompressedPath(t *testing.T) {
	orchestrator := &scriptedOrchestrator{response: "compressed draft"}
	engine, service := newTestEngine(t, orchestrator, Options{MaxContextTokens: 1})
	ctx := context.Background()

	result, err := engine.Generate(ctx, Request{
		Analysis:    testAnalysis(),
		Instruction: "write the first draft",
	})
	require.NoError(t, err)

	assert.True(t, result.Compressed)

	// Compressed path sends a single assembled user prompt.
	req := orchestrator.requests[0]
	require.Len(t, req.Messages, 1)
	assert.Contains(t, req.Messages[0].Content, "NEW INSTRUCTION:\nwrite the first draft")
	assert.Contains(t, req.Messages[0].Content, "JOB POSTING:")

	record, err := service.Get(ctx, result.ConversationID)
	require.NoError(t, err)
	require.NotNil(t, record.CompressedState)
	assert.Equal(t, 1, record.CompressedState.TotalIterations)
	assert.Equal(t, "compressed draft", record.CompressedState.CurrentContent)
}

func TestGenerateStaysCompressed(t *testing.T) {
	orchestrator := &scriptedOrchestrator{response: "draft"}
	engine, _ := newTestEngine(t, orchestrator, Options{MaxContextTokens: 1})
	ctx := context.Background()

	first, err := engine.Generate(ctx, Request{
		Analysis:    testAnalysis(),
		Instruction: "write the first draft",
	})
	require.NoError(t, err)

	second, err := engine.Generate(ctx, Request{
		ConversationID: first.ConversationID,
		Instruction:    "make it shorter",
	})
	require.NoError(t, err)

	assert.True(t, second.Compressed)
	req := orchestrator.requests[1]
	require.Len(t, req.Messages, 1)
	assert.Contains(t, req.Messages[0].Content, "RECENT CONVERSATION:")
	assert.Contains(t, req.Messages[0].Content, "CURRENT VERSION:")
}

func TestGenerateRequiresInstruction(t *testing.T) {
	engine, _ := newTestEngine(t, &scriptedOrchestrator{}, Options{})

	_, err := engine.Generate(context.Background(), Request{Analysis: testAnalysis()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "instruction is required")
}

func TestGenerateRequiresAnchorOrID(t *testing.T) {
	engine, _ := newTestEngine(t, &scriptedOrchestrator{}, Options{})

	_, err := engine.Generate(context.Background(), Request{Instruction: "write a draft"})
	require.Error(t, err)
}

func TestGenerateProviderOverride(t *testing.T) {
	orchestrator := &scriptedOrchestrator{response: "draft"}
	engine, _ := newTestEngine(t, orchestrator, Options{Provider: "anthropic"})

	_, err := engine.Generate(context.Background(), Request{
		Analysis:    testAnalysis(),
		Instruction: "write a draft",
		Provider:    "google",
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"google"}, orchestrator.preferred)
}

func TestGenerateSurfacesProviderError(t *testing.T) {
	orchestrator := &scriptedOrchestrator{err: errors.New("boom")}
	engine, service := newTestEngine(t, orchestrator, Options{})
	ctx := context.Background()

	_, err := engine.Generate(ctx, Request{
		Analysis:    testAnalysis(),
		Instruction: "write a draft",
	})
	require.Error(t, err)

	// The conversation exists but no exchange was recorded.
	records, err2 := service.Store().FindByAnalysis(ctx, "analysis-1")
	require.NoError(t, err2)
	require.Len(t, records, 1)
	assert.Empty(t, records[0].Messages)
}
