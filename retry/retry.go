// Package retry runs operations under a bounded exponential backoff.
// Only errors classified as transient are attempted again.
package retry

import (
	"chat-archiver/errors"
	"context"
	stderrors "errors"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v5"
)

type Policy struct {
	MaxAttempts     uint
	InitialInterval time.Duration
	MaxInterval     time.Duration
	Multiplier      float64
}

func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts:     5,
		InitialInterval: 200 * time.Millisecond,
		MaxInterval:     5 * time.Second,
		Multiplier:      2,
	}
}

func (p Policy) backOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	if p.InitialInterval > 0 {
		b.InitialInterval = p.InitialInterval
	}
	if p.MaxInterval > 0 {
		b.MaxInterval = p.MaxInterval
	}
	if p.Multiplier > 0 {
		b.Multiplier = p.Multiplier
	}
	return b
}

// Do calls op until it succeeds, returns a non transient error, the
// attempts are exhausted or ctx is done. The last error is returned as is.
func Do(ctx context.Context, log *slog.Logger, policy Policy, name string, op func(ctx context.Context) error) error {
	attempts := policy.MaxAttempts
	if attempts == 0 {
		attempts = 1
	}
	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		if err := op(ctx); err != nil {
			if errors.IsTransient(err) {
				return struct{}{}, err
			}
			return struct{}{}, backoff.Permanent(err)
		}
		return struct{}{}, nil
	},
		backoff.WithBackOff(policy.backOff()),
		backoff.WithMaxTries(attempts),
		backoff.WithNotify(func(err error, next time.Duration) {
			log.Warn("Transient failure, retrying", "operation", name, "error", err, "next", next)
		}),
	)
	var permanent *backoff.PermanentError
	if stderrors.As(err, &permanent) {
		return permanent.Unwrap()
	}
	return err
}
