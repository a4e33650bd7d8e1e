// Package conversations defines the data model for cover letter
// conversations: role-tagged messages, persisted conversation records,
// the compressed long-term context shape, and manual edit records.
package conversations

import (
	"time"
)

// Role identifies the author of a message. Only the three values below
// are valid; the generation layer rejects anything else.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// MessageMetadata carries provenance for a message: why the turn was
// added. It is never sent to a provider.
type MessageMetadata struct {
	Instructions     string `json:"instructions,omitempty"`
	SampleLetter     string `json:"sampleLetter,omitempty"`
	ReferenceContent string `json:"referenceContent,omitempty"`
}

// Message is one turn in a conversation log.
type Message struct {
	Role      Role             `json:"role"`
	Content   string           `json:"content"`
	Timestamp time.Time        `json:"timestamp"`
	Metadata  *MessageMetadata `json:"metadata,omitempty"`
}

// NewMessage creates a message stamped with the current time.
func NewMessage(role Role, content string) Message {
	return Message{
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	}
}

// ConversationRecord is the persisted unit of a single cover letter
// thread. Messages is append-only in normal operation; compression is
// the only path that rewrites history, and it operates on the embedded
// CompressedState rather than the full log.
type ConversationRecord struct {
	ID              string             `json:"id"`
	AnalysisID      string             `json:"analysisId"`
	Core            CoreContext        `json:"coreContext"`
	Messages        []Message          `json:"messages"`
	CurrentContent  string             `json:"currentContent"`
	BaselineContent string             `json:"baselineContent,omitempty"`
	EditHistory     []EditSnapshot     `json:"editHistory,omitempty"`
	CompressedState *CompressedContext `json:"compressedState,omitempty"`
	CreatedAt       time.Time          `json:"createdAt"`
	UpdatedAt       time.Time          `json:"updatedAt"`
}

// NewConversationRecord creates a new conversation record anchored to
// an analysis. If no ID is provided, one is generated.
func NewConversationRecord(id, analysisID string, core CoreContext) ConversationRecord {
	now := time.Now()

	if id == "" {
		id = GenerateID()
	}

	return ConversationRecord{
		ID:         id,
		AnalysisID: analysisID,
		Core:       core,
		Messages:   make([]Message, 0),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// AppendExchange appends a user/assistant pair to the message log and
// updates the current content pointer. Pairs are the only supported
// append unit; a user message without its response is not a valid state.
func (cr *ConversationRecord) AppendExchange(instruction, response, referenceContent string) {
	userMsg := NewMessage(RoleUser, instruction)
	if referenceContent != "" {
		userMsg.Metadata = &MessageMetadata{ReferenceContent: referenceContent}
	}
	cr.Messages = append(cr.Messages, userMsg, NewMessage(RoleAssistant, response))
	cr.CurrentContent = response
	cr.BaselineContent = response
	cr.UpdatedAt = time.Now()
}

// ConversationSummary provides a brief overview of a conversation for
// listings.
type ConversationSummary struct {
	ID               string    `json:"id"`
	AnalysisID       string    `json:"analysisId"`
	MessageCount     int       `json:"messageCount"`
	FirstInstruction string    `json:"firstInstruction"`
	JobTitle         string    `json:"jobTitle,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// ToSummary converts a ConversationRecord to a ConversationSummary.
func (cr *ConversationRecord) ToSummary() ConversationSummary {
	firstInstruction := ""
	for _, msg := range cr.Messages {
		if msg.Role == RoleUser {
			firstInstruction = msg.Content
			if len(firstInstruction) > 100 {
				firstInstruction = firstInstruction[:97] + "..."
			}
			break
		}
	}

	return ConversationSummary{
		ID:               cr.ID,
		AnalysisID:       cr.AnalysisID,
		MessageCount:     len(cr.Messages),
		FirstInstruction: firstInstruction,
		JobTitle:         cr.Core.Analysis.JobPosting.Title,
		CreatedAt:        cr.CreatedAt,
		UpdatedAt:        cr.UpdatedAt,
	}
}

// QueryOptions provides filtering and sorting options for conversation
// queries.
type QueryOptions struct {
	StartDate  *time.Time // Filter by start date
	EndDate    *time.Time // Filter by end date
	SearchTerm string     // Text to search for in messages
	AnalysisID string     // Filter by anchoring analysis
	Limit      int        // Maximum number of results
	Offset     int        // Offset for pagination
	SortBy     string     // "updated", "created" or "messages"
	SortOrder  string     // "asc" or "desc"
}
