package conversations

import (
	"context"
	"encoding/json"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/MichaelPaulukonis/job-posting-analyzer-sub000/pkg/logger"
	convtypes "github.com/MichaelPaulukonis/job-posting-analyzer-sub000/pkg/types/conversations"
)

// JSONConversationStore implements ConversationStore using one JSON
// file per conversation.
type JSONConversationStore struct {
	basePath string
}

var _ ConversationStore = (*JSONConversationStore)(nil)

// NewJSONConversationStore creates a JSON file-based conversation store.
func NewJSONConversationStore(basePath string) (*JSONConversationStore, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, errors.Wrap(err, "failed to create conversations directory")
	}

	return &JSONConversationStore{
		basePath: basePath,
	}, nil
}

// Save persists a conversation to a JSON file via an atomic
// write-then-rename.
func (s *JSONConversationStore) Save(ctx context.Context, record convtypes.ConversationRecord) error {
	if record.ID == "" {
		record.ID = convtypes.GenerateID()
	}
	record.UpdatedAt = time.Now()

	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to marshal conversation record")
	}

	filePath := filepath.Join(s.basePath, record.ID+".json")
	tempPath := filePath + ".tmp"

	if err := os.WriteFile(tempPath, data, 0644); err != nil {
		return errors.Wrap(err, "failed to write temporary conversation file")
	}

	if err := os.Rename(tempPath, filePath); err != nil {
		os.Remove(tempPath)
		return errors.Wrap(err, "failed to rename temporary conversation file")
	}

	return nil
}

// Load retrieves a conversation from its JSON file.
func (s *JSONConversationStore) Load(ctx context.Context, id string) (convtypes.ConversationRecord, error) {
	filePath := filepath.Join(s.basePath, id+".json")

	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return convtypes.ConversationRecord{}, errors.Wrapf(ErrNotFound, "id %s", id)
		}
		return convtypes.ConversationRecord{}, errors.Wrap(err, "failed to read conversation file")
	}

	var record convtypes.ConversationRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return convtypes.ConversationRecord{}, errors.Wrap(err, "failed to unmarshal conversation record")
	}

	return record, nil
}

// FindByAnalysis returns every conversation anchored to the given
// analysis, most recently updated first.
func (s *JSONConversationStore) FindByAnalysis(ctx context.Context, analysisID string) ([]convtypes.ConversationRecord, error) {
	var records []convtypes.ConversationRecord

	err := s.walkRecords(ctx, func(record convtypes.ConversationRecord) {
		if record.AnalysisID == analysisID {
			records = append(records, record)
		}
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].UpdatedAt.After(records[j].UpdatedAt)
	})
	return records, nil
}

// List returns summaries of all stored conversations.
func (s *JSONConversationStore) List(ctx context.Context) ([]convtypes.ConversationSummary, error) {
	return s.Query(ctx, convtypes.QueryOptions{})
}

// Delete removes a conversation file.
func (s *JSONConversationStore) Delete(ctx context.Context, id string) error {
	filePath := filepath.Join(s.basePath, id+".json")

	err := os.Remove(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return errors.Wrapf(ErrNotFound, "id %s", id)
		}
		return errors.Wrap(err, "failed to delete conversation file")
	}

	return nil
}

// Query searches for conversations matching the given criteria.
func (s *JSONConversationStore) Query(ctx context.Context, options convtypes.QueryOptions) ([]convtypes.ConversationSummary, error) {
	var summaries []convtypes.ConversationSummary

	err := s.walkRecords(ctx, func(record convtypes.ConversationRecord) {
		if !matchesQuery(record, options) {
			return
		}
		summaries = append(summaries, record.ToSummary())
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to query conversations")
	}

	sortSummaries(summaries, options)
	return paginate(summaries, options), nil
}

// walkRecords calls fn for every parseable record in the store.
// Unreadable or corrupt files are logged and skipped so one bad file
// does not hide the rest.
func (s *JSONConversationStore) walkRecords(ctx context.Context, fn func(convtypes.ConversationRecord)) error {
	return filepath.WalkDir(s.basePath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".json") {
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			logger.G(ctx).WithError(err).WithField("path", path).Warn("skipping unreadable conversation file")
			return nil
		}

		var record convtypes.ConversationRecord
		if err := json.Unmarshal(data, &record); err != nil {
			logger.G(ctx).WithError(err).WithField("path", path).Warn("skipping corrupt conversation file")
			return nil
		}

		fn(record)
		return nil
	})
}

func matchesQuery(record convtypes.ConversationRecord, options convtypes.QueryOptions) bool {
	if options.AnalysisID != "" && record.AnalysisID != options.AnalysisID {
		return false
	}
	if options.StartDate != nil && record.UpdatedAt.Before(*options.StartDate) {
		return false
	}
	if options.EndDate != nil && record.UpdatedAt.After(*options.EndDate) {
		return false
	}

	if options.SearchTerm != "" {
		term := strings.ToLower(options.SearchTerm)
		found := strings.Contains(strings.ToLower(record.Core.Analysis.JobPosting.Title), term) ||
			strings.Contains(strings.ToLower(record.CurrentContent), term)
		if !found {
			for _, msg := range record.Messages {
				if strings.Contains(strings.ToLower(msg.Content), term) {
					found = true
					break
				}
			}
		}
		if !found {
			return false
		}
	}

	return true
}

func sortSummaries(summaries []convtypes.ConversationSummary, options convtypes.QueryOptions) {
	asc := options.SortOrder == "asc"

	sort.Slice(summaries, func(i, j int) bool {
		switch options.SortBy {
		case "created":
			if asc {
				return summaries[i].CreatedAt.Before(summaries[j].CreatedAt)
			}
			return summaries[i].CreatedAt.After(summaries[j].CreatedAt)
		case "messages":
			if asc {
				return summaries[i].MessageCount < summaries[j].MessageCount
			}
			return summaries[i].MessageCount > summaries[j].MessageCount
		default:
			if asc {
				return summaries[i].UpdatedAt.Before(summaries[j].UpdatedAt)
			}
			return summaries[i].UpdatedAt.After(summaries[j].UpdatedAt)
		}
	})
}

func paginate(summaries []convtypes.ConversationSummary, options convtypes.QueryOptions) []convtypes.ConversationSummary {
	if options.Limit <= 0 && options.Offset <= 0 {
		return summaries
	}

	offset := options.Offset
	if offset > len(summaries) {
		offset = len(summaries)
	}

	limit := options.Limit
	if limit <= 0 || offset+limit > len(summaries) {
		limit = len(summaries) - offset
	}

	return summaries[offset : offset+limit]
}

// Close cleans up any resources.
func (s *JSONConversationStore) Close() error {
	return nil
}
