package conversations

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MichaelPaulukonis/job-posting-analyzer-sub000/pkg/prompt"
	convtypes "github.com/MichaelPaulukonis/job-posting-analyzer-sub000/pkg/types/conversations"
)

func testAnalysis() convtypes.AnalysisResult {
	return convtypes.AnalysisResult{
		ID: "analysis-1",
		JobPosting: convtypes.JobPosting{
			Title:   "Staff Engineer",
			Content: "We are hiring a staff engineer.",
		},
		Resume:  convtypes.Resume{Content: "Ten years of Go."},
		Matches: []string{"Go experience"},
		Gaps:    []string{"No Kubernetes"},
	}
}

func TestNewContext(t *testing.T) {
	ctx := NewContext(testAnalysis(), "sample letter text")

	assert.Equal(t, convtypes.RoleSystem, ctx.SystemMessage.Role)
	assert.Equal(t, prompt.SystemPersona, ctx.SystemMessage.Content)
	assert.Equal(t, convtypes.RoleUser, ctx.AnalysisContext.Role)
	assert.Contains(t, ctx.AnalysisContext.Content, "Staff Engineer")
	assert.Contains(t, ctx.AnalysisContext.Content, "Ten years of Go.")
	require.NotNil(t, ctx.AnalysisContext.Metadata)
	assert.Equal(t, "sample letter text", ctx.AnalysisContext.Metadata.SampleLetter)
	assert.Empty(t, ctx.History)
}

func TestNewContextWithoutSample(t *testing.T) {
	ctx := NewContext(testAnalysis(), "")
	assert.Nil(t, ctx.AnalysisContext.Metadata)
}

func TestAddExchangeDoesNotMutateInput(t *testing.T) {
	ctx := NewContext(testAnalysis(), "")
	next := AddExchange(ctx, "write a draft", "the draft", "")

	assert.Empty(t, ctx.History)
	require.Len(t, next.History, 2)
	assert.Equal(t, convtypes.RoleUser, next.History[0].Role)
	assert.Equal(t, "write a draft", next.History[0].Content)
	assert.Equal(t, convtypes.RoleAssistant, next.History[1].Role)
	assert.Equal(t, "the draft", next.History[1].Content)
}

func TestAddExchangeAppendsInOrder(t *testing.T) {
	ctx := NewContext(testAnalysis(), "")
	ctx = AddExchange(ctx, "first", "draft one", "")
	ctx = AddExchange(ctx, "second", "draft two", "edited")

	require.Len(t, ctx.History, 4)
	assert.Equal(t, "second", ctx.History[2].Content)
	require.NotNil(t, ctx.History[2].Metadata)
	assert.Equal(t, "edited", ctx.History[2].Metadata.ReferenceContent)
}

func TestContextFromRecord(t *testing.T) {
	record := convtypes.NewConversationRecord("", "analysis-1", convtypes.CoreContext{
		Analysis:           testAnalysis(),
		SystemInstructions: "custom persona",
	})
	record.AppendExchange("write a draft", "the draft", "")

	ctx := ContextFromRecord(record)

	assert.Equal(t, "custom persona", ctx.SystemMessage.Content)
	require.Len(t, ctx.History, 2)
	assert.Equal(t, "write a draft", ctx.History[0].Content)
}

func TestFormatForGeneration(t *testing.T) {
	ctx := NewContext(testAnalysis(), "")
	ctx = AddExchange(ctx, "write a draft", "the draft", "")

	req := FormatForGeneration(ctx, "make it shorter", "")

	assert.Equal(t, prompt.SystemPersona, req.SystemInstruction)
	require.Len(t, req.Messages, 4)
	assert.Equal(t, "user", req.Messages[0].Role)
	assert.Equal(t, ctx.AnalysisContext.Content, req.Messages[0].Content)
	assert.Equal(t, "make it shorter", req.Messages[3].Content)
}

func TestFormatForGenerationWithReference(t *testing.T) {
	ctx := NewContext(testAnalysis(), "")

	req := FormatForGeneration(ctx, "keep my edits", "my edited letter")

	last := req.Messages[len(req.Messages)-1]
	assert.True(t, strings.HasPrefix(last.Content, "keep my edits"))
	assert.Contains(t, last.Content, "my edited letter")
	assert.Contains(t, last.Content, "REFERENCE VERSION")
}

func TestFormatForGenerationWithoutNewInstruction(t *testing.T) {
	ctx := NewContext(testAnalysis(), "")
	ctx = AddExchange(ctx, "write a draft", "the draft", "")

	req := FormatForGeneration(ctx, "", "")

	assert.Len(t, req.Messages, 3)
}

func TestInstructionSummary(t *testing.T) {
	ctx := NewContext(testAnalysis(), "")
	ctx = AddExchange(ctx, "make it shorter", "draft", "")
	ctx = AddExchange(ctx, "avoid corporate jargon", "draft", "")

	summary := InstructionSummary(ctx)

	assert.Equal(t, "Previous instructions included: make it shorter; avoid corporate jargon", summary)
}

func TestInstructionSummaryEmptyHistory(t *testing.T) {
	ctx := NewContext(testAnalysis(), "")

	assert.Equal(t, "Previous instructions included: ", InstructionSummary(ctx))
}
