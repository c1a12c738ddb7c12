package services

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"fairwork.com/fairwork/internal/constants"
	"fairwork.com/fairwork/internal/marketplace"
	model "fairwork.com/fairwork/internal/models"
	repository "fairwork.com/fairwork/internal/repositories"
)

// IngestService records what the marketplace and the worker-side script tell
// us: requesters, task groups, tasks, workers, submissions, and self-reported
// durations, all created on first observation.
type IngestService struct {
	requesters  *repository.RequesterRepository
	groups      *repository.TaskGroupRepository
	submissions *repository.SubmissionRepository
	durations   *repository.DurationRepository
	pool        *marketplace.Pool
}

func NewIngestService(
	requesters *repository.RequesterRepository,
	groups *repository.TaskGroupRepository,
	submissions *repository.SubmissionRepository,
	durations *repository.DurationRepository,
	pool *marketplace.Pool,
) *IngestService {
	return &IngestService{
		requesters:  requesters,
		groups:      groups,
		submissions: submissions,
		durations:   durations,
		pool:        pool,
	}
}

// RegisterRequester upserts a requester's marketplace credentials and email.
func (s *IngestService) RegisterRequester(ctx context.Context, accountID, accessKey, secretKey, email string) (*model.Requester, error) {
	return s.requesters.Upsert(ctx, accountID, accessKey, secretKey, email)
}

// RegisterTask records a task group and task on first observation. When the
// caller does not supply the piece rate, the marketplace is asked for it.
func (s *IngestService) RegisterTask(ctx context.Context, groupID, taskID, accountID, host string, reward *decimal.Decimal) (*model.Task, error) {
	requester, err := s.requesters.FindByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	env := constants.EnvironmentFromHost(host)
	payment, err := s.resolveReward(ctx, requester, env, taskID, reward)
	if err != nil {
		return nil, err
	}

	group, err := s.groups.GetOrCreate(ctx, groupID, payment, env, requester.AccountID)
	if err != nil {
		return nil, err
	}
	return s.groups.GetOrCreateTask(ctx, taskID, group.ID)
}

func (s *IngestService) resolveReward(ctx context.Context, requester *model.Requester, env constants.Environment, taskID string, reward *decimal.Decimal) (decimal.Decimal, error) {
	if reward != nil {
		return *reward, nil
	}
	client := s.pool.Get(requester, env)
	payment, err := client.TaskReward(ctx, taskID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("querying task reward: %w", err)
	}
	return payment, nil
}

// RecordDuration upserts a worker's self-reported completion time for a
// submission, creating the worker and submission on first observation. The
// task must already be registered.
func (s *IngestService) RecordDuration(ctx context.Context, taskID, workerID, submissionID string, duration time.Duration, consented bool) (*model.DurationReport, error) {
	if duration <= 0 {
		return nil, fmt.Errorf("duration must be positive")
	}

	task, err := s.groups.FindTask(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("task %s is not registered: %w", taskID, err)
	}

	worker, err := s.submissions.GetOrCreateWorker(ctx, workerID)
	if err != nil {
		return nil, err
	}
	if consented && !worker.Consented {
		if err := s.submissions.MarkWorkerConsented(ctx, worker.ID); err != nil {
			return nil, err
		}
	}

	submission, err := s.submissions.GetOrCreate(ctx, submissionID, task.ID, worker.ID)
	if err != nil {
		return nil, err
	}

	return s.durations.Upsert(ctx, submission.ID, duration)
}

// LatestReport returns the most recent report a worker filed under a task
// group. UI feedback only; the audit never reads it.
func (s *IngestService) LatestReport(ctx context.Context, groupID, workerID string) (*model.DurationReport, error) {
	return s.durations.LatestForGroupWorker(ctx, groupID, workerID)
}
