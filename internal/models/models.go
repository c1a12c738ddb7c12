package model

import (
	"time"

	"github.com/shopspring/decimal"

	"fairwork.com/fairwork/internal/constants"
)

// Requester owns task groups and the marketplace account that pays for them.
// Credentials are written by the registration endpoint and read-only everywhere else.
type Requester struct {
	AccountID string    `gorm:"primaryKey;size:200" json:"account_id"`
	AccessKey string    `gorm:"not null" json:"-"`
	SecretKey string    `gorm:"not null" json:"-"`
	Email     string    `json:"email,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// TaskGroup is a class of identical micro-tasks sharing one piece rate.
type TaskGroup struct {
	ID          string                `gorm:"primaryKey;size:200" json:"id"`
	Payment     decimal.Decimal       `gorm:"type:numeric;not null" json:"payment"`
	Environment constants.Environment `gorm:"type:varchar(20);not null;index" json:"environment"`
	RequesterID string                `gorm:"size:200;not null;index" json:"requester_id"`
	Requester   *Requester            `gorm:"foreignKey:RequesterID" json:"-"`
	CreatedAt   time.Time             `json:"created_at"`
}

// Task is one schedulable unit of work belonging to a TaskGroup.
type Task struct {
	ID          string     `gorm:"primaryKey;size:200" json:"id"`
	TaskGroupID string     `gorm:"size:200;not null;index" json:"task_group_id"`
	TaskGroup   *TaskGroup `gorm:"foreignKey:TaskGroupID" json:"-"`
	CreatedAt   time.Time  `json:"created_at"`
}

// Worker is a marketplace worker, shared across requesters.
type Worker struct {
	ID        string    `gorm:"primaryKey;size:200" json:"id"`
	Consented bool      `gorm:"not null;default:false" json:"consented"`
	CreatedAt time.Time `json:"created_at"`
}

// Submission is one worker's completed attempt at a task.
type Submission struct {
	ID        string                     `gorm:"primaryKey;size:200" json:"id"`
	TaskID    string                     `gorm:"size:200;not null;index" json:"task_id"`
	Task      *Task                      `gorm:"foreignKey:TaskID" json:"-"`
	WorkerID  string                     `gorm:"size:200;not null;index" json:"worker_id"`
	Worker    *Worker                    `gorm:"foreignKey:WorkerID" json:"-"`
	Status    constants.SubmissionStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	UpdatedAt time.Time                  `json:"updated_at"`
}

// DurationReport is the worker's self-reported elapsed time for a submission.
// At most one current report per submission; re-reporting overwrites.
type DurationReport struct {
	ID           uint          `gorm:"primaryKey" json:"id"`
	SubmissionID string        `gorm:"size:200;not null;uniqueIndex" json:"submission_id"`
	Submission   *Submission   `gorm:"foreignKey:SubmissionID" json:"-"`
	Duration     time.Duration `gorm:"not null" json:"duration"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

// Audit is the wage-fairness verdict for one submission. It is never deleted;
// once paid or closed it serves as a permanent ledger entry.
type Audit struct {
	ID            uint                  `gorm:"primaryKey" json:"id"`
	SubmissionID  string                `gorm:"size:200;not null;uniqueIndex" json:"submission_id"`
	Submission    *Submission           `gorm:"foreignKey:SubmissionID" json:"-"`
	EstimatedTime *time.Duration        `json:"estimated_time,omitempty"`
	EstimatedRate *decimal.Decimal      `gorm:"type:numeric" json:"estimated_rate,omitempty"`
	Status        constants.AuditStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	NotifiedAt    *time.Time            `json:"notified_at,omitempty"`
	Frozen        bool                  `gorm:"not null;default:false;index" json:"frozen"`
	Closed        bool                  `gorm:"not null;default:false;index" json:"closed"`
	UpdatedAt     time.Time             `json:"updated_at"`
}

// IsUnderpaid reports whether the audited submission paid under the given
// minimum hourly wage. Without a time report nobody can be called underpaid.
func (a *Audit) IsUnderpaid(minimumWage decimal.Decimal) bool {
	if a.EstimatedTime == nil || a.EstimatedRate == nil {
		return false
	}
	return a.EstimatedRate.LessThan(minimumWage)
}

// Underpayment returns the top-up needed to bring this submission's pay to the
// minimum wage at the estimated rate, or nil when the rate is unknown.
func (a *Audit) Underpayment(piecePayment, minimumWage decimal.Decimal) *decimal.Decimal {
	if a.EstimatedTime == nil || a.EstimatedRate == nil {
		return nil
	}
	ratio := minimumWage.Div(*a.EstimatedRate)
	owed := piecePayment.Mul(ratio.Sub(decimal.NewFromInt(1)))
	return &owed
}

// Freeze suspends bonus eligibility and estimate inclusion for one
// (worker, requester) pair until removed.
type Freeze struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	WorkerID    string    `gorm:"size:200;not null;index:idx_freeze_pair,unique" json:"worker_id"`
	RequesterID string    `gorm:"size:200;not null;index:idx_freeze_pair,unique" json:"requester_id"`
	Reason      string    `gorm:"not null" json:"reason"`
	CreatedAt   time.Time `json:"created_at"`
}
