package queue

import (
	"context"
	"errors"
)

// RunLock keeps two scheduled batch runs from interleaving. Best effort: the
// engine is still designed single-writer, the lock just makes a double-started
// cron job skip instead of racing.
type RunLock interface {
	Acquire(ctx context.Context) error

	Release(ctx context.Context) error
}

var ErrLockHeld = errors.New("another batch run holds the lock")
