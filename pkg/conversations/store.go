package conversations

import (
	"context"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	convtypes "github.com/MichaelPaulukonis/job-posting-analyzer-sub000/pkg/types/conversations"
)

// ConversationStore defines the interface for conversation persistence.
type ConversationStore interface {
	Save(ctx context.Context, record convtypes.ConversationRecord) error
	Load(ctx context.Context, id string) (convtypes.ConversationRecord, error)
	// FindByAnalysis returns every conversation anchored to the given
	// analysis, newest first.
	FindByAnalysis(ctx context.Context, analysisID string) ([]convtypes.ConversationRecord, error)
	List(ctx context.Context) ([]convtypes.ConversationSummary, error)
	Query(ctx context.Context, options convtypes.QueryOptions) ([]convtypes.ConversationSummary, error)
	Delete(ctx context.Context, id string) error
	Close() error
}

// ErrNotFound is returned when a conversation ID has no record.
var ErrNotFound = errors.New("conversation not found")

// Config holds configuration for the conversation store.
type Config struct {
	Backend  string `mapstructure:"backend"`   // "json" or "sqlite"
	BasePath string `mapstructure:"base_path"` // base storage path
}

// DefaultConfig returns the default store configuration.
func DefaultConfig() (*Config, error) {
	basePath, err := GetDefaultBasePath()
	if err != nil {
		return nil, err
	}
	return &Config{
		Backend:  "json",
		BasePath: basePath,
	}, nil
}

// GetDefaultBasePath returns the default storage directory.
func GetDefaultBasePath() (string, error) {
	if basePath := os.Getenv("COVERLETTER_BASE_PATH"); basePath != "" {
		return basePath, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "failed to get home directory")
	}
	return filepath.Join(homeDir, ".coverletter"), nil
}

// NewStore creates a conversation store from configuration.
func NewStore(ctx context.Context, cfg *Config) (ConversationStore, error) {
	if cfg == nil {
		defaultCfg, err := DefaultConfig()
		if err != nil {
			return nil, err
		}
		cfg = defaultCfg
	}
	if cfg.BasePath == "" {
		basePath, err := GetDefaultBasePath()
		if err != nil {
			return nil, err
		}
		cfg.BasePath = basePath
	}

	switch cfg.Backend {
	case "", "json":
		return NewJSONConversationStore(filepath.Join(cfg.BasePath, "conversations"))
	case "sqlite":
		return NewSQLiteConversationStore(ctx, filepath.Join(cfg.BasePath, "storage.db"))
	default:
		return nil, errors.Errorf("unsupported store backend: %s", cfg.Backend)
	}
}
