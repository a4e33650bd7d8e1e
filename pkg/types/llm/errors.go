package llm

import (
	"fmt"
	"strings"
)

// overloadPatterns are the substrings that mark a provider error as a
// transient overload. Overload is the only failure class that triggers
// fallback to the next provider; anything else is surfaced immediately
// so configuration bugs are not masked by provider switching.
var overloadPatterns = []string{
	"overloaded",
	"529",
}

// IsOverloaded reports whether err represents a transient provider
// overload, classified solely by substring match on the error message.
func IsOverloaded(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, pattern := range overloadPatterns {
		if strings.Contains(msg, pattern) {
			return true
		}
	}
	return false
}

// ExhaustedError is returned when every configured provider was
// attempted and all failed. It is distinct from any individual
// provider's error so callers can tell "every option failed" from "one
// option failed".
type ExhaustedError struct {
	Attempted []string
	Err       error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("all generation services failed (tried %s): %v",
		strings.Join(e.Attempted, ", "), e.Err)
}

func (e *ExhaustedError) Unwrap() error {
	return e.Err
}
