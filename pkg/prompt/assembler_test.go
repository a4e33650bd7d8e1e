package prompt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	convtypes "github.com/MichaelPaulukonis/job-posting-analyzer-sub000/pkg/types/conversations"
)

func fullContext() convtypes.CompressedContext {
	cc := convtypes.NewCompressedContext("analysis-1", convtypes.CoreContext{
		Analysis: convtypes.AnalysisResult{
			ID: "analysis-1",
			JobPosting: convtypes.JobPosting{
				Title:   "Staff Engineer",
				Content: "We are hiring.",
			},
			Resume:  convtypes.Resume{Content: "Ten years of Go."},
			Matches: []string{"Go experience"},
			Maybes:  []string{"Team leadership"},
			Gaps:    []string{"No Kubernetes"},
		},
		SampleLetter:       "A sample letter.",
		SystemInstructions: "persona text",
	})
	cc.ContextSummary = "Summary of 4 earlier conversation messages:"
	cc.RecentMessages = []convtypes.Message{
		convtypes.NewMessage(convtypes.RoleUser, "make it shorter"),
		convtypes.NewMessage(convtypes.RoleAssistant, "shorter draft"),
	}
	cc.CurrentContent = "the current letter"
	return cc
}

func TestPrepareForGenerationSectionOrder(t *testing.T) {
	assembled := PrepareForGeneration(fullContext(), "make it warmer")

	assert.Equal(t, "persona text", assembled.SystemInstruction)

	markers := []string{
		"JOB POSTING:",
		"RESUME:",
		"ANALYSIS RESULTS:",
		"SAMPLE COVER LETTER",
		"PREVIOUS CONTEXT SUMMARY:",
		"RECENT CONVERSATION:",
		"CURRENT VERSION:",
		"NEW INSTRUCTION:",
	}

	last := -1
	for _, marker := range markers {
		idx := strings.Index(assembled.UserPrompt, marker)
		require.GreaterOrEqual(t, idx, 0, "missing section %q", marker)
		assert.Greater(t, idx, last, "section %q out of order", marker)
		last = idx
	}
}

func TestPrepareForGenerationIsDeterministic(t *testing.T) {
	cc := fullContext()

	first := PrepareForGeneration(cc, "make it warmer")
	second := PrepareForGeneration(cc, "make it warmer")

	assert.Equal(t, first, second)
}

func TestPrepareForGenerationOmitsEmptySections(t *testing.T) {
	cc := convtypes.NewCompressedContext("analysis-1", convtypes.CoreContext{
		Analysis: convtypes.AnalysisResult{ID: "analysis-1"},
	})

	assembled := PrepareForGeneration(cc, "")

	assert.NotContains(t, assembled.UserPrompt, "JOB POSTING:")
	assert.NotContains(t, assembled.UserPrompt, "RESUME:")
	assert.NotContains(t, assembled.UserPrompt, "SAMPLE COVER LETTER")
	assert.NotContains(t, assembled.UserPrompt, "PREVIOUS CONTEXT SUMMARY:")
	assert.NotContains(t, assembled.UserPrompt, "RECENT CONVERSATION:")
	assert.NotContains(t, assembled.UserPrompt, "CURRENT VERSION:")
	assert.NotContains(t, assembled.UserPrompt, "NEW INSTRUCTION:")
}

func TestAnalysisSectionAlwaysRendersAllLists(t *testing.T) {
	cc := convtypes.NewCompressedContext("analysis-1", convtypes.CoreContext{
		Analysis: convtypes.AnalysisResult{ID: "analysis-1"},
	})

	assembled := PrepareForGeneration(cc, "")

	assert.Contains(t, assembled.UserPrompt, "ANALYSIS RESULTS:")
	assert.Contains(t, assembled.UserPrompt, "Matches:")
	assert.Contains(t, assembled.UserPrompt, "Potential matches:")
	assert.Contains(t, assembled.UserPrompt, "Gaps:")
}

func TestPrepareForGenerationRendersBullets(t *testing.T) {
	assembled := PrepareForGeneration(fullContext(), "")

	assert.Contains(t, assembled.UserPrompt, "- Go experience")
	assert.Contains(t, assembled.UserPrompt, "- Team leadership")
	assert.Contains(t, assembled.UserPrompt, "- No Kubernetes")
}

func TestRecentConversationFormat(t *testing.T) {
	assembled := PrepareForGeneration(fullContext(), "")

	assert.Contains(t, assembled.UserPrompt, "USER: make it shorter")
	assert.Contains(t, assembled.UserPrompt, "ASSISTANT: shorter draft")
}

func TestCurrentVersionDelimited(t *testing.T) {
	assembled := PrepareForGeneration(fullContext(), "")

	assert.Contains(t, assembled.UserPrompt, "CURRENT VERSION:\n---\nthe current letter\n---")
}

func TestAnalysisContext(t *testing.T) {
	analysis := fullContext().Core.Analysis

	content := AnalysisContext(analysis, "A sample letter.")

	assert.Contains(t, content, "JOB POSTING:")
	assert.Contains(t, content, "Title: Staff Engineer")
	assert.Contains(t, content, "RESUME:")
	assert.Contains(t, content, "ANALYSIS RESULTS:")
	assert.Contains(t, content, "SAMPLE COVER LETTER")
}

func TestAnalysisContextWithoutSample(t *testing.T) {
	analysis := fullContext().Core.Analysis

	content := AnalysisContext(analysis, "")

	assert.NotContains(t, content, "SAMPLE COVER LETTER")
}

func TestReferenceBlock(t *testing.T) {
	block := ReferenceBlock("my edited letter")

	assert.Contains(t, block, "REFERENCE VERSION")
	assert.Contains(t, block, "---\nmy edited letter\n---")
}

func TestSystemPersonaContent(t *testing.T) {
	assert.Contains(t, SystemPersona, "cover letter")
	assert.NotEmpty(t, SystemPersona)
}
