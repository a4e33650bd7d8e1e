package conversations

import "time"

// CompressionLevel tracks how much history folding a context has been
// through. Transitions are monotonic: none -> light -> aggressive.
type CompressionLevel string

const (
	CompressionNone       CompressionLevel = "none"
	CompressionLight      CompressionLevel = "light"
	CompressionAggressive CompressionLevel = "aggressive"
)

// CompressedContext is the long-lived conversation shape: the immutable
// core anchor, an append-only summary of everything folded out so far,
// and a bounded tail of recent uncompressed turns.
type CompressedContext struct {
	ID               string           `json:"id"`
	AnalysisID       string           `json:"analysisId"`
	Core             CoreContext      `json:"coreContext"`
	ContextSummary   string           `json:"contextSummary,omitempty"`
	RecentMessages   []Message        `json:"recentMessages"`
	CurrentContent   string           `json:"currentContent"`
	TotalIterations  int              `json:"totalIterations"`
	CompressionLevel CompressionLevel `json:"compressionLevel"`
	EditHistory      []EditSnapshot   `json:"editHistory,omitempty"`
	CreatedAt        time.Time        `json:"createdAt"`
	UpdatedAt        time.Time        `json:"updatedAt"`
}

// NewCompressedContext creates an empty compressed context around the
// given core anchor.
func NewCompressedContext(analysisID string, core CoreContext) CompressedContext {
	now := time.Now()
	return CompressedContext{
		ID:               GenerateID(),
		AnalysisID:       analysisID,
		Core:             core,
		RecentMessages:   make([]Message, 0),
		CompressionLevel: CompressionNone,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}
