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

type SubmissionRepository struct {
	db *gorm.DB
}

func NewSubmissionRepository(db *gorm.DB) *SubmissionRepository {
	return &SubmissionRepository{db: db}
}

// GetOrCreateWorker records a worker on first interaction.
func (r *SubmissionRepository) GetOrCreateWorker(ctx context.Context, id string) (*model.Worker, error) {
	var worker model.Worker
	err := r.db.WithContext(ctx).First(&worker, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		worker = model.Worker{ID: id, CreatedAt: time.Now().UTC()}
		if err := r.db.WithContext(ctx).Create(&worker).Error; err != nil {
			return nil, err
		}
		return &worker, nil
	}
	if err != nil {
		return nil, err
	}
	return &worker, nil
}

// MarkWorkerConsented records the worker's acknowledgement of the audit.
func (r *SubmissionRepository) MarkWorkerConsented(ctx context.Context, workerID string) error {
	return r.db.WithContext(ctx).Model(&model.Worker{}).
		Where("id = ?", workerID).
		Update("consented", true).Error
}

// GetOrCreate records a submission on first observation, in open status.
func (r *SubmissionRepository) GetOrCreate(ctx context.Context, id, taskID, workerID string) (*model.Submission, error) {
	var submission model.Submission
	err := r.db.WithContext(ctx).First(&submission, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		submission = model.Submission{
			ID:       id,
			TaskID:   taskID,
			WorkerID: workerID,
			Status:   constants.StatusOpen,
		}
		if err := r.db.WithContext(ctx).Create(&submission).Error; err != nil {
			return nil, err
		}
		return &submission, nil
	}
	if err != nil {
		return nil, err
	}
	return &submission, nil
}

func (r *SubmissionRepository) FindByID(ctx context.Context, id string) (*model.Submission, error) {
	var submission model.Submission
	err := r.db.WithContext(ctx).
		Preload("Worker").
		Preload("Task.TaskGroup.Requester").
		First(&submission, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrSubmissionNotFound
	}
	if err != nil {
		return nil, err
	}
	return &submission, nil
}

// ListPollable returns submissions whose marketplace status is still in flight.
func (r *SubmissionRepository) ListPollable(ctx context.Context) ([]model.Submission, error) {
	var submissions []model.Submission
	err := r.db.WithContext(ctx).
		Preload("Worker").
		Preload("Task.TaskGroup.Requester").
		Where("status IN ?", []constants.SubmissionStatus{constants.StatusOpen, constants.StatusSubmitted}).
		Order("id asc").
		Find(&submissions).Error
	return submissions, err
}

func (r *SubmissionRepository) UpdateStatus(ctx context.Context, id string, status constants.SubmissionStatus) error {
	return r.db.WithContext(ctx).Model(&model.Submission{}).
		Where("id = ?", id).
		Update("status", status).Error
}

// ListAuditable returns approved submissions in one environment that either
// have no audit yet or whose audit is still open for refresh.
func (r *SubmissionRepository) ListAuditable(ctx context.Context, env constants.Environment) ([]model.Submission, error) {
	var submissions []model.Submission
	err := r.db.WithContext(ctx).
		Preload("Worker").
		Preload("Task.TaskGroup.Requester").
		Joins("JOIN tasks ON tasks.id = submissions.task_id").
		Joins("JOIN task_groups ON task_groups.id = tasks.task_group_id").
		Joins("LEFT JOIN audits ON audits.submission_id = submissions.id").
		Where("submissions.status = ?", constants.StatusApproved).
		Where("task_groups.environment = ?", env).
		Where("audits.id IS NULL OR (audits.closed = ? AND audits.status <> ?)", false, constants.AuditPaid).
		Order("submissions.id asc").
		Find(&submissions).Error
	return submissions, err
}
