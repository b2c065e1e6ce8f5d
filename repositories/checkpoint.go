//go:generate go run go.uber.org/mock/mockgen -source=checkpoint.go -destination=../mocks/mock_checkpoint_repository.go -package=mocks
package repositories

import (
	"chat-archiver/domain"
	"context"
)

// ICheckpointRepository persists delivery progress per (document, sender filter).
// Get never returns an absent checkpoint: a key with no stored state yields a
// fresh empty one. Unreadable state is an error, not an empty checkpoint.
type ICheckpointRepository interface {
	Get(ctx context.Context, documentID string, senderFilter *string) (domain.ProcessingCheckpoint, error)
	Save(ctx context.Context, checkpoint domain.ProcessingCheckpoint) error
}
