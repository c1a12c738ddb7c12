package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	apperrors "fairwork.com/fairwork/internal/errors"
	model "fairwork.com/fairwork/internal/models"
)

type DurationRepository struct {
	db *gorm.DB
}

func NewDurationRepository(db *gorm.DB) *DurationRepository {
	return &DurationRepository{db: db}
}

// Upsert records a worker's self-reported duration. The latest report wins;
// there is at most one current report per submission.
func (r *DurationRepository) Upsert(ctx context.Context, submissionID string, duration time.Duration) (*model.DurationReport, error) {
	var report model.DurationReport
	err := r.db.WithContext(ctx).First(&report, "submission_id = ?", submissionID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		report = model.DurationReport{
			SubmissionID: submissionID,
			Duration:     duration,
		}
		if err := r.db.WithContext(ctx).Create(&report).Error; err != nil {
			return nil, err
		}
		return &report, nil
	}
	if err != nil {
		return nil, err
	}

	report.Duration = duration
	if err := r.db.WithContext(ctx).Save(&report).Error; err != nil {
		return nil, err
	}
	return &report, nil
}

// ReportsByTask returns every current report under the given tasks, grouped by
// task id, skipping reports from the excluded workers.
func (r *DurationRepository) ReportsByTask(ctx context.Context, taskIDs, excludedWorkerIDs []string) (map[string][]time.Duration, error) {
	if len(taskIDs) == 0 {
		return map[string][]time.Duration{}, nil
	}

	type row struct {
		TaskID   string
		Duration time.Duration
	}

	query := r.db.WithContext(ctx).Model(&model.DurationReport{}).
		Select("submissions.task_id as task_id, duration_reports.duration as duration").
		Joins("JOIN submissions ON submissions.id = duration_reports.submission_id").
		Where("submissions.task_id IN ?", taskIDs)
	if len(excludedWorkerIDs) > 0 {
		query = query.Where("submissions.worker_id NOT IN ?", excludedWorkerIDs)
	}

	var rows []row
	if err := query.Scan(&rows).Error; err != nil {
		return nil, err
	}

	grouped := make(map[string][]time.Duration, len(taskIDs))
	for _, row := range rows {
		grouped[row.TaskID] = append(grouped[row.TaskID], row.Duration)
	}
	return grouped, nil
}

// LatestForGroupWorker returns the most recent report a worker filed under a
// task group. Read-only UI feedback, not used by the audit computation.
func (r *DurationRepository) LatestForGroupWorker(ctx context.Context, groupID, workerID string) (*model.DurationReport, error) {
	var report model.DurationReport
	err := r.db.WithContext(ctx).
		Joins("JOIN submissions ON submissions.id = duration_reports.submission_id").
		Joins("JOIN tasks ON tasks.id = submissions.task_id").
		Where("tasks.task_group_id = ? AND submissions.worker_id = ?", groupID, workerID).
		Order("duration_reports.updated_at desc").
		First(&report).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrReportNotFound
	}
	if err != nil {
		return nil, err
	}
	return &report, nil
}
