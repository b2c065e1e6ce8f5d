package domain

import (
	"chat-archiver/errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

// ProcessingCheckpoint records which messages were delivered to a document,
// optionally scoped to one sender.
// Values are never mutated: MarkProcessed builds a new checkpoint.
type ProcessingCheckpoint struct {
	id            uuid.UUID
	documentID    string
	senderFilter  *string
	lastProcessed *time.Time
	processed     map[string]MessageID
}

func NewCheckpoint(documentID string, senderFilter *string) (ProcessingCheckpoint, error) {
	if strings.TrimSpace(documentID) == "" {
		return ProcessingCheckpoint{}, errors.NewValidationError("documentID", "must not be empty", errors.ErrEmptyDocumentID)
	}
	return ProcessingCheckpoint{
		id:           uuid.New(),
		documentID:   documentID,
		senderFilter: cloneFilter(senderFilter),
		processed:    map[string]MessageID{},
	}, nil
}

// RestoreCheckpoint rebuilds a persisted checkpoint and refuses state whose
// last processed timestamp disagrees with its processed ids.
func RestoreCheckpoint(
	id uuid.UUID,
	documentID string,
	senderFilter *string,
	lastProcessed *time.Time,
	ids []MessageID,
) (ProcessingCheckpoint, error) {
	checkpoint, err := NewCheckpoint(documentID, senderFilter)
	if err != nil {
		return ProcessingCheckpoint{}, err
	}
	if id == uuid.Nil {
		return ProcessingCheckpoint{}, errors.NewValidationError("id", "must not be nil", nil)
	}
	checkpoint.id = id
	checkpoint = checkpoint.MarkProcessed(ids...)

	switch {
	case lastProcessed == nil && checkpoint.lastProcessed != nil:
		return ProcessingCheckpoint{}, errors.NewValidationError("lastProcessedTimestamp",
			"missing while processed ids are present", nil)
	case lastProcessed != nil && checkpoint.lastProcessed == nil:
		return ProcessingCheckpoint{}, errors.NewValidationError("lastProcessedTimestamp",
			"set while no id is processed", nil)
	case lastProcessed != nil && !lastProcessed.Equal(*checkpoint.lastProcessed):
		return ProcessingCheckpoint{}, errors.NewValidationError("lastProcessedTimestamp",
			fmt.Sprintf("%s is not the latest processed timestamp %s",
				lastProcessed.Format(time.RFC3339Nano), checkpoint.lastProcessed.Format(time.RFC3339Nano)), nil)
	}
	return checkpoint, nil
}

func (c ProcessingCheckpoint) ID() uuid.UUID      { return c.id }
func (c ProcessingCheckpoint) DocumentID() string { return c.documentID }
func (c ProcessingCheckpoint) ProcessedCount() int {
	return len(c.processed)
}

func (c ProcessingCheckpoint) SenderFilter() *string {
	return cloneFilter(c.senderFilter)
}

// LastProcessedTimestamp is nil until at least one id is marked.
func (c ProcessingCheckpoint) LastProcessedTimestamp() *time.Time {
	if c.lastProcessed == nil {
		return nil
	}
	return lo.ToPtr(*c.lastProcessed)
}

func (c ProcessingCheckpoint) IsProcessed(id MessageID) bool {
	_, ok := c.processed[id.Key()]
	return ok
}

// ProcessedIDs are returned in chronological order, ties broken by hash.
func (c ProcessingCheckpoint) ProcessedIDs() []MessageID {
	keys := lo.Keys(c.processed)
	sort.Strings(keys)
	return lo.Map(keys, func(key string, _ int) MessageID {
		return c.processed[key]
	})
}

// MarkProcessed returns a checkpoint holding the current ids plus the given ones.
// The receiver is left untouched.
func (c ProcessingCheckpoint) MarkProcessed(ids ...MessageID) ProcessingCheckpoint {
	next := ProcessingCheckpoint{
		id:            c.id,
		documentID:    c.documentID,
		senderFilter:  cloneFilter(c.senderFilter),
		lastProcessed: c.LastProcessedTimestamp(),
		processed:     make(map[string]MessageID, len(c.processed)+len(ids)),
	}
	for key, id := range c.processed {
		next.processed[key] = id
	}
	for _, id := range ids {
		next.processed[id.Key()] = id
		if next.lastProcessed == nil || id.Timestamp.After(*next.lastProcessed) {
			next.lastProcessed = lo.ToPtr(id.Timestamp)
		}
	}
	return next
}

func cloneFilter(filter *string) *string {
	if filter == nil {
		return nil
	}
	return lo.ToPtr(*filter)
}
