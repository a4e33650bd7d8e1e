package conversations

import "time"

// EditType classifies one chunk of a manual edit diff.
type EditType string

const (
	EditAdded   EditType = "added"
	EditRemoved EditType = "removed"
)

// EditRecord is one contiguous diff chunk from a manual edit pass.
type EditRecord struct {
	Type      EditType  `json:"type"`
	Value     string    `json:"value"`
	Timestamp time.Time `json:"timestamp"`
}

// EditSnapshot captures the pre-edit content together with the diffs
// that were applied to it outside the generation flow.
type EditSnapshot struct {
	Content   string       `json:"content"`
	Timestamp time.Time    `json:"timestamp"`
	Edits     []EditRecord `json:"edits"`
}
