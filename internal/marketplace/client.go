// Package marketplace abstracts the task marketplace the auditor pays bonuses
// through. The concrete wire client is injected; the core only depends on the
// capabilities below and on the typed failure modes of the bonus call.
package marketplace

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

var (
	// ErrInsufficientFunds means the requester's account cannot cover the
	// bonus. Recoverable: the next scheduled run retries.
	ErrInsufficientFunds = errors.New("requester has insufficient funds")

	// ErrDuplicateToken means a bonus with the same idempotency token was
	// already disbursed. Treated as success by callers.
	ErrDuplicateToken = errors.New("idempotency token has already been processed")

	// ErrSubmissionUnknown means the marketplace no longer recognizes the
	// submission id.
	ErrSubmissionUnknown = errors.New("submission is not known to the marketplace")
)

// Client is one requester's connection to one marketplace environment.
type Client interface {
	// SubmissionStatus returns the marketplace's current status string for a
	// submission. Mapping to the internal enum is the caller's job.
	SubmissionStatus(ctx context.Context, submissionID string) (string, error)

	// TaskReward returns the piece-rate payment attached to a task.
	TaskReward(ctx context.Context, taskID string) (decimal.Decimal, error)

	// SendBonus pays a worker, nominally attached to one representative
	// submission. The token makes retries converge instead of double-paying.
	SendBonus(ctx context.Context, workerID string, amount decimal.Decimal, submissionID, reason, token string) error

	// NotifyWorker sends a message to a worker through the marketplace.
	NotifyWorker(ctx context.Context, workerID, subject, message string) error
}
