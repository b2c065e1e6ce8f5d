package internal

import (
	"chat-archiver/domain"
	"chat-archiver/errors"
	"chat-archiver/repositories"
	"chat-archiver/retry"
	"context"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"
)

// CheckpointStore is a checkpoint repository that can also enumerate what it holds.
type CheckpointStore interface {
	repositories.ICheckpointRepository
	List(ctx context.Context) ([]domain.ProcessingCheckpoint, error)
}

type StoreOptions struct {
	Backend        string
	CheckpointDir  string
	BadgerFilepath string
	// ReadOnly opens badger without taking its directory lock, for inspection
	// while an archive run holds it.
	ReadOnly bool
}

// OpenCheckpointStore returns the store and the function releasing it.
func OpenCheckpointStore(options StoreOptions, log *slog.Logger, policy retry.Policy) (CheckpointStore, func() error, error) {
	switch options.Backend {
	case BackendFile:
		store, err := repositories.NewFileCheckpointRepository(options.CheckpointDir, log, policy)
		if err != nil {
			return nil, nil, err
		}
		return store, func() error { return nil }, nil
	case BackendBadger:
		db, err := badger.Open(badgerOptions(options, log))
		if err != nil {
			return nil, nil, fmt.Errorf("database opening failed: %w", err)
		}
		closeDB := func() error {
			log.Debug("Closing BadgerDB...")
			return db.Close()
		}
		return repositories.NewBadgerCheckpointRepository(db, log, policy), closeDB, nil
	default:
		return nil, nil, fmt.Errorf("%q: %w", options.Backend, errors.ErrUnsupportedBackend)
	}
}

func badgerOptions(options StoreOptions, log *slog.Logger) badger.Options {
	opts := badger.DefaultOptions(options.BadgerFilepath)
	if options.ReadOnly {
		opts = opts.WithReadOnly(true).WithBypassLockGuard(true)
	}
	if log.Enabled(context.Background(), slog.LevelDebug) {
		return opts.WithLoggingLevel(badger.DEBUG)
	}
	return opts.WithLoggingLevel(badger.WARNING)
}
