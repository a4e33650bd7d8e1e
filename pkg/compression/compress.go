// Package compression bounds conversation growth by folding older
// turns into a textual summary while keeping the most recent turns
// intact. Style instructions the user has emphasized are preserved
// verbatim across every compression pass; losing them causes visible
// regressions, banned words creeping back into regenerated letters.
package compression

import (
	"fmt"
	"strings"
	"time"

	convtypes "github.com/MichaelPaulukonis/job-posting-analyzer-sub000/pkg/types/conversations"
)

// DefaultKeyPhrases marks instructions that must survive compression
// untruncated.
var DefaultKeyPhrases = []string{
	"avoid corporate jargon",
	"remove flowery language",
	"use specific examples",
	"avoid overused terms",
}

// Config tunes the compressor. Zero values select the defaults.
type Config struct {
	Threshold    int      `mapstructure:"threshold" json:"threshold"`         // compress when recent messages reach this
	MaxRecent    int      `mapstructure:"max_recent" json:"maxRecent"`        // uncompressed tail kept after a pass
	TruncateAt   int      `mapstructure:"truncate_at" json:"truncateAt"`      // truncation length for non-key instructions
	AggressiveAt int      `mapstructure:"aggressive_at" json:"aggressiveAt"`  // compressed slice larger than this marks the pass aggressive
	KeyPhrases   []string `mapstructure:"key_phrases" json:"keyPhrases"`
}

// DefaultConfig returns the default compressor tuning.
func DefaultConfig() Config {
	return Config{
		Threshold:    8,
		MaxRecent:    6,
		TruncateAt:   100,
		AggressiveAt: 10,
		KeyPhrases:   DefaultKeyPhrases,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Threshold <= 0 {
		c.Threshold = d.Threshold
	}
	if c.MaxRecent <= 0 {
		c.MaxRecent = d.MaxRecent
	}
	if c.TruncateAt <= 0 {
		c.TruncateAt = d.TruncateAt
	}
	if c.AggressiveAt <= 0 {
		c.AggressiveAt = d.AggressiveAt
	}
	if len(c.KeyPhrases) == 0 {
		c.KeyPhrases = d.KeyPhrases
	}
	return c
}

// AddInteraction returns a new context with the user/assistant pair
// appended to the recent tail. Compression runs synchronously before
// returning whenever the tail reaches the threshold, so the recent
// message bound holds on every return value, never deferred.
func AddInteraction(cc convtypes.CompressedContext, instruction, response string, cfg Config) convtypes.CompressedContext {
	cfg = cfg.withDefaults()

	recent := make([]convtypes.Message, len(cc.RecentMessages), len(cc.RecentMessages)+2)
	copy(recent, cc.RecentMessages)
	recent = append(recent,
		convtypes.NewMessage(convtypes.RoleUser, instruction),
		convtypes.NewMessage(convtypes.RoleAssistant, response),
	)

	cc.RecentMessages = recent
	cc.CurrentContent = response
	cc.TotalIterations++
	cc.UpdatedAt = time.Now()

	if len(cc.RecentMessages) >= cfg.Threshold {
		cc = compress(cc, cfg)
	}

	return cc
}

// Compact runs a compression pass immediately when the recent tail has
// already reached the threshold, without appending anything. Used when
// adopting an uncompressed conversation history that has outgrown its
// token budget.
func Compact(cc convtypes.CompressedContext, cfg Config) convtypes.CompressedContext {
	cfg = cfg.withDefaults()
	if len(cc.RecentMessages) >= cfg.Threshold {
		cc = compress(cc, cfg)
	}
	return cc
}

// compress folds everything but the last MaxRecent messages into the
// context summary. The summary is append-only: earlier summary text is
// never rewritten, only extended.
func compress(cc convtypes.CompressedContext, cfg Config) convtypes.CompressedContext {
	if len(cc.RecentMessages) <= cfg.MaxRecent {
		return cc
	}

	cut := len(cc.RecentMessages) - cfg.MaxRecent
	toCompress := cc.RecentMessages[:cut]
	keep := cc.RecentMessages[cut:]

	block := summarize(toCompress, cfg)
	if cc.ContextSummary != "" {
		cc.ContextSummary += "\n\n" + block
	} else {
		cc.ContextSummary = block
	}

	cc.RecentMessages = append(make([]convtypes.Message, 0, len(keep)), keep...)

	if len(toCompress) > cfg.AggressiveAt {
		cc.CompressionLevel = convtypes.CompressionAggressive
	} else {
		cc.CompressionLevel = convtypes.CompressionLight
	}
	cc.UpdatedAt = time.Now()

	return cc
}

func summarize(messages []convtypes.Message, cfg Config) string {
	var key, other []string
	for _, msg := range messages {
		if msg.Role != convtypes.RoleUser {
			continue
		}
		if containsKeyPhrase(msg.Content, cfg.KeyPhrases) {
			key = append(key, msg.Content)
		} else {
			other = append(other, msg.Content)
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Summary of %d earlier conversation messages:", len(messages))

	if len(key) > 0 {
		b.WriteString("\nKey instructions to maintain:")
		for _, instruction := range key {
			b.WriteString("\n- " + instruction)
		}
	}
	if len(other) > 0 {
		b.WriteString("\nOther modifications requested:")
		for _, instruction := range other {
			b.WriteString("\n- " + truncate(instruction, cfg.TruncateAt))
		}
	}

	return b.String()
}

func containsKeyPhrase(content string, phrases []string) bool {
	lowered := strings.ToLower(content)
	for _, phrase := range phrases {
		if strings.Contains(lowered, phrase) {
			return true
		}
	}
	return false
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
