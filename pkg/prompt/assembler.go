package prompt

import (
	"strings"

	convtypes "github.com/MichaelPaulukonis/job-posting-analyzer-sub000/pkg/types/conversations"
)

// Assembled is the rendered prompt pair for one generation call. The
// system instruction is taken verbatim from the core context; the user
// prompt is assembled in a fixed section order so identical state
// always produces identical bytes.
type Assembled struct {
	SystemInstruction string
	UserPrompt        string
}

// PrepareForGeneration renders a compressed context plus an optional
// new instruction into the prompt pair the generation layer consumes.
//
// Section order is fixed: job posting, resume, analysis results, sample
// letter, previous context summary, recent conversation, current
// version, new instruction. A section with no source data is omitted
// entirely, except the analysis results block which always renders its
// three lists even when they are empty.
func PrepareForGeneration(cc convtypes.CompressedContext, newInstruction string) Assembled {
	var sections []string

	appendSection := func(s string) {
		if s != "" {
			sections = append(sections, s)
		}
	}

	appendSection(jobPostingSection(cc.Core.Analysis.JobPosting))
	appendSection(resumeSection(cc.Core.Analysis.Resume))
	appendSection(analysisSection(cc.Core.Analysis))
	appendSection(sampleLetterSection(cc.Core.SampleLetter))

	if cc.ContextSummary != "" {
		appendSection("PREVIOUS CONTEXT SUMMARY:\n" + cc.ContextSummary)
	}
	appendSection(recentConversationSection(cc.RecentMessages))
	if cc.CurrentContent != "" {
		appendSection("CURRENT VERSION:\n---\n" + cc.CurrentContent + "\n---")
	}
	if newInstruction != "" {
		appendSection("NEW INSTRUCTION:\n" + newInstruction)
	}

	return Assembled{
		SystemInstruction: cc.Core.SystemInstructions,
		UserPrompt:        strings.Join(sections, "\n\n"),
	}
}

// AnalysisContext renders the synthetic first-turn message content that
// embeds the posting, resume, analysis lists and optional sample letter
// for the uncompressed conversation path.
func AnalysisContext(analysis convtypes.AnalysisResult, sampleLetter string) string {
	var sections []string
	sections = append(sections, "Here is the job posting, my resume, and an analysis of how well I match. Write my cover letter from this material.")

	if s := jobPostingSection(analysis.JobPosting); s != "" {
		sections = append(sections, s)
	}
	if s := resumeSection(analysis.Resume); s != "" {
		sections = append(sections, s)
	}
	sections = append(sections, analysisSection(analysis))
	if s := sampleLetterSection(sampleLetter); s != "" {
		sections = append(sections, s)
	}

	return strings.Join(sections, "\n\n")
}

// ReferenceBlock renders a user-edited current version appended to a
// new instruction, clearly delimited so the model treats it as the
// authoritative starting text.
func ReferenceBlock(referenceContent string) string {
	return "REFERENCE VERSION (user-edited, work from this):\n---\n" + referenceContent + "\n---"
}

func jobPostingSection(posting convtypes.JobPosting) string {
	if posting.Title == "" && posting.Content == "" {
		return ""
	}
	var b strings.Builder
	b.WriteString("JOB POSTING:")
	if posting.Title != "" {
		b.WriteString("\nTitle: " + posting.Title)
	}
	if posting.Content != "" {
		b.WriteString("\n" + posting.Content)
	}
	return b.String()
}

func resumeSection(resume convtypes.Resume) string {
	if resume.Content == "" {
		return ""
	}
	return "RESUME:\n" + resume.Content
}

// analysisSection always renders all three lists. Downstream style
// rules key off the block structure, so an empty bullet list is
// rendered rather than dropped.
func analysisSection(analysis convtypes.AnalysisResult) string {
	var b strings.Builder
	b.WriteString("ANALYSIS RESULTS:")
	b.WriteString("\nMatches:\n" + bullets(analysis.Matches))
	b.WriteString("Potential matches:\n" + bullets(analysis.Maybes))
	b.WriteString("Gaps:\n" + bullets(analysis.Gaps))
	return strings.TrimSuffix(b.String(), "\n")
}

func sampleLetterSection(sample string) string {
	if sample == "" {
		return ""
	}
	return "SAMPLE COVER LETTER (match tone, do not copy):\n---\n" + sample + "\n---"
}

func recentConversationSection(messages []convtypes.Message) string {
	if len(messages) == 0 {
		return ""
	}
	lines := make([]string, 0, len(messages)+1)
	lines = append(lines, "RECENT CONVERSATION:")
	for _, msg := range messages {
		lines = append(lines, strings.ToUpper(string(msg.Role))+": "+msg.Content)
	}
	return strings.Join(lines, "\n")
}

func bullets(items []string) string {
	var b strings.Builder
	for _, item := range items {
		b.WriteString("- " + item + "\n")
	}
	return b.String()
}
