package conversations

import (
	"context"

	"github.com/MichaelPaulukonis/job-posting-analyzer-sub000/pkg/logger"
	"github.com/MichaelPaulukonis/job-posting-analyzer-sub000/pkg/prompt"
	convtypes "github.com/MichaelPaulukonis/job-posting-analyzer-sub000/pkg/types/conversations"
)

// Service provides conversation management on top of a store.
type Service struct {
	store ConversationStore
}

// NewService creates a conversation service backed by the given store.
func NewService(store ConversationStore) *Service {
	return &Service{store: store}
}

// NewServiceFromConfig creates a service with a store built from config.
func NewServiceFromConfig(ctx context.Context, cfg *Config) (*Service, error) {
	store, err := NewStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return NewService(store), nil
}

// Store exposes the underlying store.
func (s *Service) Store() ConversationStore {
	return s.store
}

// GetOrCreateForAnalysis returns the conversation anchored to the given
// analysis, creating one when none exists. An analysis is expected to
// have at most one conversation; when duplicates exist the most
// recently updated record wins and the rest are left untouched.
func (s *Service) GetOrCreateForAnalysis(ctx context.Context, analysis convtypes.AnalysisResult, sampleLetter string) (convtypes.ConversationRecord, bool, error) {
	matches, err := s.store.FindByAnalysis(ctx, analysis.ID)
	if err != nil {
		return convtypes.ConversationRecord{}, false, err
	}

	if len(matches) > 0 {
		if len(matches) > 1 {
			logger.G(ctx).WithField("analysis_id", analysis.ID).
				WithField("count", len(matches)).
				Warn("multiple conversations found for analysis, using most recent")
		}
		return matches[0], false, nil
	}

	record := convtypes.NewConversationRecord("", analysis.ID, convtypes.CoreContext{
		Analysis:           analysis,
		SampleLetter:       sampleLetter,
		SystemInstructions: prompt.SystemPersona,
	})
	if err := s.store.Save(ctx, record); err != nil {
		return convtypes.ConversationRecord{}, false, err
	}

	logger.G(ctx).WithField("conversation_id", record.ID).
		WithField("analysis_id", analysis.ID).
		Debug("created conversation for analysis")
	return record, true, nil
}

// Get loads a conversation by ID.
func (s *Service) Get(ctx context.Context, id string) (convtypes.ConversationRecord, error) {
	return s.store.Load(ctx, id)
}

// Save persists a conversation.
func (s *Service) Save(ctx context.Context, record convtypes.ConversationRecord) error {
	return s.store.Save(ctx, record)
}

// List returns summaries of all conversations.
func (s *Service) List(ctx context.Context) ([]convtypes.ConversationSummary, error) {
	return s.store.List(ctx)
}

// Query returns summaries matching the given options.
func (s *Service) Query(ctx context.Context, options convtypes.QueryOptions) ([]convtypes.ConversationSummary, error) {
	return s.store.Query(ctx, options)
}

// Delete removes a conversation by ID.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	logger.G(ctx).WithField("conversation_id", id).Debug("deleted conversation")
	return nil
}

// DeleteByAnalysis removes every conversation anchored to the given
// analysis and reports how many were deleted.
func (s *Service) DeleteByAnalysis(ctx context.Context, analysisID string) (int, error) {
	matches, err := s.store.FindByAnalysis(ctx, analysisID)
	if err != nil {
		return 0, err
	}

	deleted := 0
	for _, record := range matches {
		if err := s.store.Delete(ctx, record.ID); err != nil {
			return deleted, err
		}
		deleted++
	}
	return deleted, nil
}

// Close releases store resources.
func (s *Service) Close() error {
	return s.store.Close()
}
