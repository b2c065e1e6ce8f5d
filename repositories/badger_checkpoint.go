package repositories

import (
	"chat-archiver/domain"
	"chat-archiver/errors"
	"chat-archiver/retry"
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
)

const checkpointPrefix = "checkpoint:"

// BadgerCheckpointRepository stores checkpoints under "checkpoint:{key}".
// A committed transaction is the atomic unit, as a rename is for files.
type BadgerCheckpointRepository struct {
	mu     sync.Mutex
	db     *badger.DB
	log    *slog.Logger
	policy retry.Policy
	now    func() time.Time
}

func NewBadgerCheckpointRepository(db *badger.DB, log *slog.Logger, policy retry.Policy) *BadgerCheckpointRepository {
	return &BadgerCheckpointRepository{db: db, log: log, policy: policy, now: time.Now}
}

func (r *BadgerCheckpointRepository) Get(ctx context.Context, documentID string, senderFilter *string) (domain.ProcessingCheckpoint, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := StoreKey(documentID, senderFilter)
	var data []byte
	err := retry.Do(ctx, r.log, r.policy, "read checkpoint", func(ctx context.Context) error {
		return classifyBadger(r.db.View(func(txn *badger.Txn) error {
			item, err := txn.Get([]byte(checkpointPrefix + key))
			if err != nil {
				return err
			}
			data, err = item.ValueCopy(nil)
			return err
		}))
	})
	if stderrors.Is(err, badger.ErrKeyNotFound) {
		r.log.Debug("No checkpoint stored, starting fresh", "key", key)
		return domain.NewCheckpoint(documentID, senderFilter)
	}
	if err != nil {
		return domain.ProcessingCheckpoint{}, err
	}

	checkpoint, err := decodeScoped(data, documentID, senderFilter)
	if err != nil {
		return domain.ProcessingCheckpoint{}, errors.NewCorruptStateError(checkpointPrefix+key, err)
	}
	return checkpoint, nil
}

func (r *BadgerCheckpointRepository) Save(ctx context.Context, checkpoint domain.ProcessingCheckpoint) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := encode(checkpoint, r.now())
	if err != nil {
		return fmt.Errorf("encode checkpoint: %w", err)
	}
	key := checkpointPrefix + StoreKey(checkpoint.DocumentID(), checkpoint.SenderFilter())
	return retry.Do(ctx, r.log, r.policy, "write checkpoint", func(ctx context.Context) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		return classifyBadger(r.db.Update(func(txn *badger.Txn) error {
			return txn.Set([]byte(key), data)
		}))
	})
}

// List scans every stored checkpoint in key order.
func (r *BadgerCheckpointRepository) List(ctx context.Context) ([]domain.ProcessingCheckpoint, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var checkpoints []domain.ProcessingCheckpoint
	err := r.db.View(func(txn *badger.Txn) error {
		prefix := []byte(checkpointPrefix)
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			item := it.Item()
			fullKey := string(item.KeyCopy(nil))
			data, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			checkpoint, err := decode(data, strings.TrimPrefix(fullKey, checkpointPrefix))
			if err != nil {
				return errors.NewCorruptStateError(fullKey, err)
			}
			checkpoints = append(checkpoints, checkpoint)
		}
		return nil
	})
	return checkpoints, err
}

func classifyBadger(err error) error {
	if stderrors.Is(err, badger.ErrConflict) {
		return errors.NewTransientIOError("badger transaction", err)
	}
	return err
}
