package domain

import "github.com/samber/lo"

// Deduplicate keeps the export messages the checkpoint has not seen yet,
// in their original chronological order.
func Deduplicate(export ChatExport, checkpoint ProcessingCheckpoint) []ChatMessage {
	return lo.Filter(export.messages, func(m ChatMessage, _ int) bool {
		return !checkpoint.IsProcessed(m.ID())
	})
}
