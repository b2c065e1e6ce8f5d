package repositories

import (
	"chat-archiver/domain"
	"chat-archiver/errors"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

const schemaVersion = 1

// DiskCheckpoint is the persisted form of a checkpoint. Field names are part
// of the storage format and must stay stable.
type DiskCheckpoint struct {
	SchemaVersion          int             `json:"schema_version"`
	ID                     string          `json:"id"`
	DocumentID             string          `json:"document_id"`
	SenderFilter           *string         `json:"sender_filter,omitempty"`
	LastProcessedTimestamp *time.Time      `json:"last_processed_timestamp"`
	ProcessedMessageIDs    []DiskMessageID `json:"processed_message_ids"`
	UpdatedAt              time.Time       `json:"updated_at"`
}

type DiskMessageID struct {
	Timestamp   time.Time `json:"timestamp"`
	ContentHash string    `json:"content_hash"`
}

func fromCheckpoint(checkpoint domain.ProcessingCheckpoint, now time.Time) DiskCheckpoint {
	return DiskCheckpoint{
		SchemaVersion:          schemaVersion,
		ID:                     checkpoint.ID().String(),
		DocumentID:             checkpoint.DocumentID(),
		SenderFilter:           checkpoint.SenderFilter(),
		LastProcessedTimestamp: checkpoint.LastProcessedTimestamp(),
		ProcessedMessageIDs: lo.Map(checkpoint.ProcessedIDs(), func(id domain.MessageID, _ int) DiskMessageID {
			return DiskMessageID{Timestamp: id.Timestamp, ContentHash: id.ContentHash.String()}
		}),
		UpdatedAt: now.UTC(),
	}
}

func toCheckpoint(record DiskCheckpoint) (domain.ProcessingCheckpoint, error) {
	if record.SchemaVersion != schemaVersion {
		return domain.ProcessingCheckpoint{}, fmt.Errorf("unsupported schema version %d", record.SchemaVersion)
	}
	id, err := uuid.Parse(record.ID)
	if err != nil {
		return domain.ProcessingCheckpoint{}, fmt.Errorf("invalid checkpoint id: %w", err)
	}
	ids := make([]domain.MessageID, 0, len(record.ProcessedMessageIDs))
	for i, diskID := range record.ProcessedMessageIDs {
		hash, err := domain.ParseContentHash(diskID.ContentHash)
		if err != nil {
			return domain.ProcessingCheckpoint{}, fmt.Errorf("processed id %d: %w", i, err)
		}
		if diskID.Timestamp.IsZero() {
			return domain.ProcessingCheckpoint{}, fmt.Errorf("processed id %d: missing timestamp", i)
		}
		ids = append(ids, domain.MessageID{Timestamp: diskID.Timestamp, ContentHash: hash})
	}
	return domain.RestoreCheckpoint(id, record.DocumentID, record.SenderFilter, record.LastProcessedTimestamp, ids)
}

func encode(checkpoint domain.ProcessingCheckpoint, now time.Time) ([]byte, error) {
	return json.MarshalIndent(fromCheckpoint(checkpoint, now), "", "  ")
}

// decode also checks that the stored record belongs to the requested key.
func decode(data []byte, key string) (domain.ProcessingCheckpoint, error) {
	var record DiskCheckpoint
	if err := json.Unmarshal(data, &record); err != nil {
		return domain.ProcessingCheckpoint{}, err
	}
	checkpoint, err := toCheckpoint(record)
	if err != nil {
		return domain.ProcessingCheckpoint{}, err
	}
	if stored := StoreKey(checkpoint.DocumentID(), checkpoint.SenderFilter()); stored != key {
		return domain.ProcessingCheckpoint{}, fmt.Errorf("record belongs to key %q", stored)
	}
	return checkpoint, nil
}

// decodeScoped decodes the checkpoint stored for (documentID, senderFilter)
// and refuses one recorded for any other scope sharing its key.
func decodeScoped(data []byte, documentID string, senderFilter *string) (domain.ProcessingCheckpoint, error) {
	checkpoint, err := decode(data, StoreKey(documentID, senderFilter))
	if err != nil {
		return domain.ProcessingCheckpoint{}, err
	}
	if !sameScope(checkpoint, documentID, senderFilter) {
		return domain.ProcessingCheckpoint{}, fmt.Errorf("requested %q, found %q: %w",
			documentID, checkpoint.DocumentID(), errors.ErrScopeMismatch)
	}
	return checkpoint, nil
}
