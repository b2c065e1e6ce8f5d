package repositories

import (
	"chat-archiver/domain"
	"chat-archiver/errors"
	"chat-archiver/retry"
	"context"
	stderrors "errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"syscall"
	"time"
)

const (
	checkpointExt = ".checkpoint.json"
	tmpPattern    = ".tmp-*"
)

// FileCheckpointRepository keeps one JSON file per key inside dir.
// The lock is per instance: running two processes against the same key is
// not supported.
type FileCheckpointRepository struct {
	mu     sync.Mutex
	dir    string
	log    *slog.Logger
	policy retry.Policy
	now    func() time.Time
	rename func(oldPath, newPath string) error
}

func NewFileCheckpointRepository(dir string, log *slog.Logger, policy retry.Policy) (*FileCheckpointRepository, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create checkpoint directory %s: %w", dir, err)
	}
	return &FileCheckpointRepository{
		dir:    dir,
		log:    log,
		policy: policy,
		now:    time.Now,
		rename: os.Rename,
	}, nil
}

func (r *FileCheckpointRepository) Path(documentID string, senderFilter *string) string {
	return filepath.Join(r.dir, StoreKey(documentID, senderFilter)+checkpointExt)
}

func (r *FileCheckpointRepository) Get(ctx context.Context, documentID string, senderFilter *string) (domain.ProcessingCheckpoint, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	path := r.Path(documentID, senderFilter)
	var data []byte
	err := retry.Do(ctx, r.log, r.policy, "read checkpoint", func(ctx context.Context) error {
		var err error
		data, err = os.ReadFile(path)
		return classify("read "+path, err)
	})
	if stderrors.Is(err, fs.ErrNotExist) {
		r.log.Debug("No checkpoint stored, starting fresh", "path", path)
		return domain.NewCheckpoint(documentID, senderFilter)
	}
	if err != nil {
		return domain.ProcessingCheckpoint{}, err
	}

	checkpoint, err := decodeScoped(data, documentID, senderFilter)
	if err != nil {
		return domain.ProcessingCheckpoint{}, errors.NewCorruptStateError(path, err)
	}
	r.log.Debug("Checkpoint loaded", "path", path, "processed", checkpoint.ProcessedCount())
	return checkpoint, nil
}

// Save replaces the stored checkpoint through a temp file and a single rename,
// so the final file is always either the previous or the new version.
func (r *FileCheckpointRepository) Save(ctx context.Context, checkpoint domain.ProcessingCheckpoint) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := encode(checkpoint, r.now())
	if err != nil {
		return fmt.Errorf("encode checkpoint: %w", err)
	}
	path := r.Path(checkpoint.DocumentID(), checkpoint.SenderFilter())
	err = retry.Do(ctx, r.log, r.policy, "write checkpoint", func(ctx context.Context) error {
		return r.writeAtomic(ctx, path, data)
	})
	if err != nil {
		return err
	}
	r.log.Debug("Checkpoint saved", "path", path, "processed", checkpoint.ProcessedCount())
	return nil
}

func (r *FileCheckpointRepository) writeAtomic(ctx context.Context, path string, data []byte) (err error) {
	tmp, err := os.CreateTemp(r.dir, filepath.Base(path)+tmpPattern)
	if err != nil {
		return classify("create temp file", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		if err != nil {
			// Best effort: the original error is what the caller needs
			_ = tmp.Close()
			if removeErr := os.Remove(tmpPath); removeErr != nil && !stderrors.Is(removeErr, fs.ErrNotExist) {
				r.log.Warn("Could not remove temp checkpoint", "path", tmpPath, "error", removeErr)
			}
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return classify("write "+tmpPath, err)
	}
	if err = tmp.Sync(); err != nil {
		return classify("sync "+tmpPath, err)
	}
	if err = tmp.Close(); err != nil {
		return classify("close "+tmpPath, err)
	}
	if err = ctx.Err(); err != nil {
		return err
	}
	if err = r.rename(tmpPath, path); err != nil {
		return classify("rename "+tmpPath, err)
	}
	syncDir(r.dir)
	return nil
}

// List returns every checkpoint stored in the directory, skipping temp files.
func (r *FileCheckpointRepository) List(ctx context.Context) ([]domain.ProcessingCheckpoint, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	paths, err := filepath.Glob(filepath.Join(r.dir, "*"+checkpointExt))
	if err != nil {
		return nil, err
	}
	checkpoints := make([]domain.ProcessingCheckpoint, 0, len(paths))
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		key := filepath.Base(path[:len(path)-len(checkpointExt)])
		checkpoint, err := decode(data, key)
		if err != nil {
			return nil, errors.NewCorruptStateError(path, err)
		}
		checkpoints = append(checkpoints, checkpoint)
	}
	return checkpoints, nil
}

// syncDir makes the rename durable where the platform allows it.
func syncDir(dir string) {
	d, err := os.Open(dir)
	if err != nil {
		return
	}
	_ = d.Sync()
	_ = d.Close()
}

// classify marks contention errors as transient; everything else is final.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	if stderrors.Is(err, syscall.EBUSY) ||
		stderrors.Is(err, syscall.EAGAIN) ||
		stderrors.Is(err, syscall.EINTR) ||
		stderrors.Is(err, syscall.ETXTBSY) {
		return errors.NewTransientIOError(op, err)
	}
	return err
}
