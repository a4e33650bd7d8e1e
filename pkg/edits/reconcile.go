// Package edits reconciles manual, out-of-band edits to the current
// letter with the machine-maintained conversation history. Edits are
// detected as a word-level diff between the last known machine output
// and the live content, batched into one pass per reconciliation.
package edits

import (
	"strings"
	"time"

	"github.com/aymanbagabas/go-udiff"
	"github.com/pkg/errors"

	convtypes "github.com/MichaelPaulukonis/job-posting-analyzer-sub000/pkg/types/conversations"
)

// Diff computes word-level edit records between the baseline and the
// current content. Each contiguous changed chunk yields at most one
// "removed" and one "added" record.
func Diff(baseline, current string) ([]convtypes.EditRecord, error) {
	if baseline == current {
		return nil, nil
	}

	// Words joined by newlines so the line-oriented diff machinery
	// operates at word granularity.
	before := strings.Join(strings.Fields(baseline), "\n")
	after := strings.Join(strings.Fields(current), "\n")

	unified, err := udiff.ToUnifiedDiff("baseline", "current", before, udiff.Strings(before, after), 0)
	if err != nil {
		return nil, errors.Wrap(err, "failed to compute word diff")
	}

	now := time.Now()
	var records []convtypes.EditRecord
	var removed, added []string

	flush := func() {
		gone, kept := trimCommonWords(removed, added)
		if len(gone) > 0 {
			records = append(records, convtypes.EditRecord{
				Type:      convtypes.EditRemoved,
				Value:     strings.Join(gone, " "),
				Timestamp: now,
			})
		}
		if len(kept) > 0 {
			records = append(records, convtypes.EditRecord{
				Type:      convtypes.EditAdded,
				Value:     strings.Join(kept, " "),
				Timestamp: now,
			})
		}
		removed = removed[:0]
		added = added[:0]
	}

	for _, hunk := range unified.Hunks {
		for _, line := range hunk.Lines {
			word := strings.TrimSuffix(line.Content, "\n")
			switch line.Kind {
			case udiff.Delete:
				removed = append(removed, word)
			case udiff.Insert:
				added = append(added, word)
			default:
				flush()
			}
		}
		flush()
	}

	return records, nil
}

// trimCommonWords drops the shared word prefix and suffix of a paired
// removed/added chunk. The underlying diff is not guaranteed minimal: a
// pure insertion can arrive as remove "am" / add "am very", which must
// collapse to the net insertion "very".
func trimCommonWords(removed, added []string) ([]string, []string) {
	for len(removed) > 0 && len(added) > 0 && removed[0] == added[0] {
		removed = removed[1:]
		added = added[1:]
	}
	for len(removed) > 0 && len(added) > 0 && removed[len(removed)-1] == added[len(added)-1] {
		removed = removed[:len(removed)-1]
		added = added[:len(added)-1]
	}
	return removed, added
}

// ReconcileRecord folds manual edit drift on a conversation record into
// its edit history and advances the baseline to the live content. It
// returns true when a history entry was produced.
//
// An empty baseline is the first-write case: the baseline is simply
// initialized and no history entry is recorded.
func ReconcileRecord(record *convtypes.ConversationRecord, current string) (bool, error) {
	if current == "" || current == record.BaselineContent {
		return false, nil
	}

	now := time.Now()

	if record.BaselineContent == "" {
		record.BaselineContent = current
		record.CurrentContent = current
		record.UpdatedAt = now
		return false, nil
	}

	records, err := Diff(record.BaselineContent, current)
	if err != nil {
		return false, err
	}

	changed := len(records) > 0
	if changed {
		record.EditHistory = append(record.EditHistory, convtypes.EditSnapshot{
			Content:   record.BaselineContent,
			Timestamp: now,
			Edits:     records,
		})
	}

	record.BaselineContent = current
	record.CurrentContent = current
	record.UpdatedAt = now
	return changed, nil
}

// ReconcileContext is ReconcileRecord for the compressed context shape,
// where CurrentContent doubles as the baseline.
func ReconcileContext(cc *convtypes.CompressedContext, current string) (bool, error) {
	if current == "" || current == cc.CurrentContent {
		return false, nil
	}

	now := time.Now()

	if cc.CurrentContent == "" {
		cc.CurrentContent = current
		cc.UpdatedAt = now
		return false, nil
	}

	records, err := Diff(cc.CurrentContent, current)
	if err != nil {
		return false, err
	}

	changed := len(records) > 0
	if changed {
		cc.EditHistory = append(cc.EditHistory, convtypes.EditSnapshot{
			Content:   cc.CurrentContent,
			Timestamp: now,
			Edits:     records,
		})
	}

	cc.CurrentContent = current
	cc.UpdatedAt = now
	return changed, nil
}
