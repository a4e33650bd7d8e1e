package conversations

import "strings"

// DefaultMaxContextTokens is the overflow threshold applied when the
// caller does not supply one.
const DefaultMaxContextTokens = 8000

// EstimateTokens approximates the model token count of text as
// ceil(len/4). The bound is intentionally rough: it exists for
// threshold comparisons, never for billing-accurate counts, which is
// why no tokenizer dependency is involved.
func EstimateTokens(text string) int {
	return (len(text) + 3) / 4
}

// EstimateContextTokens estimates the token footprint of the whole
// context: system message, analysis context and all history content
// joined by single spaces.
func EstimateContextTokens(ctx Context) int {
	parts := make([]string, 0, len(ctx.History)+2)
	parts = append(parts, ctx.SystemMessage.Content, ctx.AnalysisContext.Content)
	for _, msg := range ctx.History {
		parts = append(parts, msg.Content)
	}
	return EstimateTokens(strings.Join(parts, " "))
}

// IsTooLong reports whether the context exceeds maxTokens. A
// non-positive maxTokens selects DefaultMaxContextTokens.
func IsTooLong(ctx Context, maxTokens int) bool {
	if maxTokens <= 0 {
		maxTokens = DefaultMaxContextTokens
	}
	return EstimateContextTokens(ctx) > maxTokens
}
