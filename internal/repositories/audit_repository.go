package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"fairwork.com/fairwork/internal/constants"
	apperrors "fairwork.com/fairwork/internal/errors"
	model "fairwork.com/fairwork/internal/models"
)

type AuditRepository struct {
	db *gorm.DB
}

func NewAuditRepository(db *gorm.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

// FindBySubmission returns the audit for a submission, or nil when the
// submission has never been considered.
func (r *AuditRepository) FindBySubmission(ctx context.Context, submissionID string) (*model.Audit, error) {
	var audit model.Audit
	err := r.db.WithContext(ctx).First(&audit, "submission_id = ?", submissionID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &audit, nil
}

// Save persists an audit, creating or updating in place. A rate of exactly
// zero is a data-integrity bug and is rejected at write time.
func (r *AuditRepository) Save(ctx context.Context, audit *model.Audit) error {
	if audit.EstimatedRate != nil && audit.EstimatedRate.IsZero() {
		return apperrors.ErrZeroRate
	}
	return r.db.WithContext(ctx).Save(audit).Error
}

// ListUnnotified returns open underpaid audits whose requester has not yet
// been told about the pending bonus, for one environment.
func (r *AuditRepository) ListUnnotified(ctx context.Context, env constants.Environment) ([]model.Audit, error) {
	return r.listPending(ctx, env, func(query *gorm.DB) *gorm.DB {
		return query.Where("audits.notified_at IS NULL")
	})
}

// ListPayable returns open underpaid audits whose grace period has elapsed,
// for one environment.
func (r *AuditRepository) ListPayable(ctx context.Context, env constants.Environment, graceLimit time.Time) ([]model.Audit, error) {
	return r.listPending(ctx, env, func(query *gorm.DB) *gorm.DB {
		return query.Where("audits.notified_at IS NOT NULL AND audits.notified_at <= ?", graceLimit)
	})
}

func (r *AuditRepository) listPending(ctx context.Context, env constants.Environment, scope func(*gorm.DB) *gorm.DB) ([]model.Audit, error) {
	query := r.db.WithContext(ctx).Model(&model.Audit{}).
		Preload("Submission.Worker").
		Preload("Submission.Task.TaskGroup.Requester").
		Joins("JOIN submissions ON submissions.id = audits.submission_id").
		Joins("JOIN tasks ON tasks.id = submissions.task_id").
		Joins("JOIN task_groups ON task_groups.id = tasks.task_group_id").
		Where("audits.status = ?", constants.AuditUnpaid).
		Where("audits.closed = ?", false).
		Where("audits.frozen = ?", false).
		Where("task_groups.environment = ?", env).
		Order("task_groups.requester_id asc, submissions.worker_id asc, task_groups.id asc, submissions.id asc")

	var audits []model.Audit
	if err := scope(query).Find(&audits).Error; err != nil {
		return nil, err
	}
	return audits, nil
}

// SetNotified stamps the grace-period clock on the given audits.
func (r *AuditRepository) SetNotified(ctx context.Context, auditIDs []uint, at time.Time) error {
	if len(auditIDs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&model.Audit{}).
		Where("id IN ?", auditIDs).
		Update("notified_at", at).Error
}

// MarkPaid closes the given audits as paid.
func (r *AuditRepository) MarkPaid(ctx context.Context, auditIDs []uint) error {
	if len(auditIDs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&model.Audit{}).
		Where("id IN ?", auditIDs).
		Updates(map[string]interface{}{
			"status": constants.AuditPaid,
			"closed": true,
		}).Error
}

// SetFrozenForPair flips the frozen flag on all open audits of one
// (worker, requester) pair. Payments already made are untouched.
func (r *AuditRepository) SetFrozenForPair(ctx context.Context, requesterID, workerID string, frozen bool) error {
	return r.db.WithContext(ctx).Model(&model.Audit{}).
		Where("audits.closed = ?", false).
		Where("audits.submission_id IN (?)",
			r.db.Model(&model.Submission{}).
				Select("submissions.id").
				Joins("JOIN tasks ON tasks.id = submissions.task_id").
				Joins("JOIN task_groups ON task_groups.id = tasks.task_group_id").
				Where("submissions.worker_id = ?", workerID).
				Where("task_groups.requester_id = ?", requesterID),
		).
		Update("frozen", frozen).Error
}
