// Package conversations provides the conversation engine for iterative
// cover letter co-authoring: the transient prompt-assembly view over a
// conversation, token estimation, and the persistence stores and
// service that conversation records live in.
package conversations

import (
	"strings"

	"github.com/MichaelPaulukonis/job-posting-analyzer-sub000/pkg/prompt"
	convtypes "github.com/MichaelPaulukonis/job-posting-analyzer-sub000/pkg/types/conversations"
	llmtypes "github.com/MichaelPaulukonis/job-posting-analyzer-sub000/pkg/types/llm"
)

// Context is the transient, derived view used during prompt assembly.
// It is rebuilt from a ConversationRecord and never persisted directly.
type Context struct {
	SystemMessage   convtypes.Message
	AnalysisContext convtypes.Message
	History         []convtypes.Message
}

// NewContext builds the prompt-assembly view for an analysis: the fixed
// persona as the system message and a synthetic user turn embedding the
// posting, resume, analysis lists and optional sample letter.
func NewContext(analysis convtypes.AnalysisResult, sampleLetter string) Context {
	analysisMsg := convtypes.NewMessage(convtypes.RoleUser, prompt.AnalysisContext(analysis, sampleLetter))
	if sampleLetter != "" {
		analysisMsg.Metadata = &convtypes.MessageMetadata{SampleLetter: sampleLetter}
	}

	return Context{
		SystemMessage:   convtypes.NewMessage(convtypes.RoleSystem, prompt.SystemPersona),
		AnalysisContext: analysisMsg,
		History:         make([]convtypes.Message, 0),
	}
}

// ContextFromRecord rebuilds the transient view from a persisted
// record. The record's message log becomes the history.
func ContextFromRecord(record convtypes.ConversationRecord) Context {
	ctx := NewContext(record.Core.Analysis, record.Core.SampleLetter)
	if record.Core.SystemInstructions != "" {
		ctx.SystemMessage.Content = record.Core.SystemInstructions
	}

	history := make([]convtypes.Message, 0, len(record.Messages))
	for _, msg := range record.Messages {
		if msg.Role == convtypes.RoleSystem {
			continue
		}
		history = append(history, msg)
	}
	ctx.History = history
	return ctx
}

// AddExchange returns a new Context whose history has the user
// instruction and assistant response appended as a pair. The input
// context is not mutated.
func AddExchange(ctx Context, instruction, response, referenceContent string) Context {
	userMsg := convtypes.NewMessage(convtypes.RoleUser, instruction)
	if referenceContent != "" {
		userMsg.Metadata = &convtypes.MessageMetadata{ReferenceContent: referenceContent}
	}

	history := make([]convtypes.Message, len(ctx.History), len(ctx.History)+2)
	copy(history, ctx.History)
	history = append(history, userMsg, convtypes.NewMessage(convtypes.RoleAssistant, response))

	return Context{
		SystemMessage:   ctx.SystemMessage,
		AnalysisContext: ctx.AnalysisContext,
		History:         history,
	}
}

// FormatForGeneration renders the context into the wire shape the
// generation layer expects: the system instruction plus the analysis
// context and history as plain role/content pairs, metadata stripped.
// When newInstruction is supplied it is appended as one more user
// message, with the reference content in a delimited block when the
// user has edited the letter by hand.
func FormatForGeneration(ctx Context, newInstruction, referenceContent string) llmtypes.Request {
	messages := make([]llmtypes.Message, 0, len(ctx.History)+2)
	messages = append(messages, llmtypes.Message{
		Role:    string(ctx.AnalysisContext.Role),
		Content: ctx.AnalysisContext.Content,
	})
	for _, msg := range ctx.History {
		messages = append(messages, llmtypes.Message{
			Role:    string(msg.Role),
			Content: msg.Content,
		})
	}

	if newInstruction != "" {
		content := newInstruction
		if referenceContent != "" {
			content += "\n\n" + prompt.ReferenceBlock(referenceContent)
		}
		messages = append(messages, llmtypes.Message{
			Role:    string(convtypes.RoleUser),
			Content: content,
		})
	}

	return llmtypes.Request{
		SystemInstruction: ctx.SystemMessage.Content,
		Messages:          messages,
	}
}

// InstructionSummary renders a one-line recap of every user instruction
// in the history, semicolon separated. An empty history yields the bare
// prefix; callers treat that as "no instructions yet", not an error.
func InstructionSummary(ctx Context) string {
	var instructions []string
	for _, msg := range ctx.History {
		if msg.Role == convtypes.RoleUser {
			instructions = append(instructions, msg.Content)
		}
	}
	return "Previous instructions included: " + strings.Join(instructions, "; ")
}
