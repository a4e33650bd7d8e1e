// Package generate runs one cover letter iteration end to end:
// reconcile manual edits, pick the full or compressed prompt path,
// assemble the prompt, call the provider chain, and persist the
// resulting exchange.
package generate

import (
	"context"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"

	"github.com/MichaelPaulukonis/job-posting-analyzer-sub000/pkg/compression"
	"github.com/MichaelPaulukonis/job-posting-analyzer-sub000/pkg/conversations"
	"github.com/MichaelPaulukonis/job-posting-analyzer-sub000/pkg/edits"
	"github.com/MichaelPaulukonis/job-posting-analyzer-sub000/pkg/logger"
	"github.com/MichaelPaulukonis/job-posting-analyzer-sub000/pkg/prompt"
	"github.com/MichaelPaulukonis/job-posting-analyzer-sub000/pkg/telemetry"
	convtypes "github.com/MichaelPaulukonis/job-posting-analyzer-sub000/pkg/types/conversations"
	llmtypes "github.com/MichaelPaulukonis/job-posting-analyzer-sub000/pkg/types/llm"
)

// Orchestrator is the provider chain the engine generates through.
type Orchestrator interface {
	Generate(ctx context.Context, preferred string, req llmtypes.Request) (string, error)
}

// Options tunes the engine. Zero values select the defaults.
type Options struct {
	Provider         string             // preferred provider name
	MaxContextTokens int                // token budget before switching to the compressed path
	Compression      compression.Config // compressor tuning
}

// Engine drives iterative letter generation over persisted
// conversations.
type Engine struct {
	orchestrator Orchestrator
	service      *conversations.Service
	opts         Options
}

// NewEngine creates a generation engine.
func NewEngine(orchestrator Orchestrator, service *conversations.Service, opts Options) *Engine {
	if opts.MaxContextTokens <= 0 {
		opts.MaxContextTokens = conversations.DefaultMaxContextTokens
	}
	return &Engine{
		orchestrator: orchestrator,
		service:      service,
		opts:         opts,
	}
}

// Request describes one iteration. Either ConversationID or Analysis
// must be set; Analysis creates (or finds) the conversation anchored to
// it.
type Request struct {
	ConversationID string
	Analysis       *convtypes.AnalysisResult
	SampleLetter   string

	Instruction string
	// CurrentContent is the live letter text as the user last saw it.
	// When it differs from the stored baseline the drift is recorded as
	// manual edits and the edited text becomes the reference version.
	CurrentContent string
	// Provider overrides the engine's preferred provider for this call.
	Provider string
}

// Result reports one completed iteration.
type Result struct {
	ConversationID string
	Letter         string
	EditsDetected  bool
	Compressed     bool
}

// Generate runs one iteration and persists the updated conversation.
func (e *Engine) Generate(ctx context.Context, req Request) (Result, error) {
	if req.Instruction == "" {
		return Result{}, errors.New("instruction is required")
	}

	record, err := e.loadOrCreate(ctx, req)
	if err != nil {
		return Result{}, err
	}

	edited, err := edits.ReconcileRecord(&record, req.CurrentContent)
	if err != nil {
		return Result{}, errors.Wrap(err, "failed to reconcile manual edits")
	}
	if record.CompressedState != nil {
		if _, err := edits.ReconcileContext(record.CompressedState, req.CurrentContent); err != nil {
			return Result{}, errors.Wrap(err, "failed to reconcile manual edits")
		}
	}
	if edited {
		logger.G(ctx).WithField("conversation_id", record.ID).Debug("manual edits detected, recorded in edit history")
	}

	referenceContent := ""
	if edited {
		referenceContent = req.CurrentContent
	}

	wireReq := e.assemble(ctx, &record, req.Instruction, referenceContent)

	preferred := req.Provider
	if preferred == "" {
		preferred = e.opts.Provider
	}

	var letter string
	err = telemetry.WithSpan(ctx, "generate.iterate", func(ctx context.Context) error {
		var genErr error
		letter, genErr = e.orchestrator.Generate(ctx, preferred, wireReq)
		return genErr
	}, attribute.String("conversation_id", record.ID))
	if err != nil {
		return Result{}, err
	}

	record.AppendExchange(req.Instruction, letter, referenceContent)
	if record.CompressedState != nil {
		compressed := compression.AddInteraction(*record.CompressedState, req.Instruction, letter, e.opts.Compression)
		record.CompressedState = &compressed
	}

	if err := e.service.Save(ctx, record); err != nil {
		return Result{}, errors.Wrap(err, "failed to save conversation")
	}

	return Result{
		ConversationID: record.ID,
		Letter:         letter,
		EditsDetected:  edited,
		Compressed:     record.CompressedState != nil,
	}, nil
}

func (e *Engine) loadOrCreate(ctx context.Context, req Request) (convtypes.ConversationRecord, error) {
	if req.ConversationID != "" {
		record, err := e.service.Get(ctx, req.ConversationID)
		if err != nil {
			return convtypes.ConversationRecord{}, err
		}
		return record, nil
	}

	if req.Analysis == nil {
		return convtypes.ConversationRecord{}, errors.New("either a conversation ID or an analysis is required")
	}
	record, _, err := e.service.GetOrCreateForAnalysis(ctx, *req.Analysis, req.SampleLetter)
	return record, err
}

// assemble picks the prompt path. A conversation stays on the full
// message-log path until its estimated token footprint exceeds the
// budget; after that it switches to the compressed path permanently.
func (e *Engine) assemble(ctx context.Context, record *convtypes.ConversationRecord, instruction, referenceContent string) llmtypes.Request {
	if record.CompressedState == nil {
		cctx := conversations.ContextFromRecord(*record)
		if !conversations.IsTooLong(cctx, e.opts.MaxContextTokens) {
			return conversations.FormatForGeneration(cctx, instruction, referenceContent)
		}

		logger.G(ctx).WithField("conversation_id", record.ID).
			WithField("max_tokens", e.opts.MaxContextTokens).
			Info("conversation exceeds token budget, switching to compressed context")
		compressed := e.adoptCompressed(*record)
		record.CompressedState = &compressed
	}

	assembled := prompt.PrepareForGeneration(*record.CompressedState, instruction)
	return llmtypes.Request{
		SystemInstruction: assembled.SystemInstruction,
		Messages: []llmtypes.Message{
			{Role: string(convtypes.RoleUser), Content: assembled.UserPrompt},
		},
	}
}

// adoptCompressed seeds a compressed context from an uncompressed
// record and folds the history immediately so the very next prompt is
// within budget.
func (e *Engine) adoptCompressed(record convtypes.ConversationRecord) convtypes.CompressedContext {
	cc := convtypes.NewCompressedContext(record.AnalysisID, record.Core)

	cc.RecentMessages = append(cc.RecentMessages, record.Messages...)
	cc.CurrentContent = record.CurrentContent
	for _, msg := range record.Messages {
		if msg.Role == convtypes.RoleUser {
			cc.TotalIterations++
		}
	}
	cc.EditHistory = append(cc.EditHistory, record.EditHistory...)

	return compression.Compact(cc, e.opts.Compression)
}
