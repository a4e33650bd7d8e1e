package conversations

import "github.com/google/uuid"

// GenerateID creates a unique identifier for a conversation or
// compressed context.
func GenerateID() string {
	return uuid.NewString()
}

// IsValidID reports whether s parses as a generated identifier.
func IsValidID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
