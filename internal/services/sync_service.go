package services

import (
	"context"
	"errors"
	"log"

	"fairwork.com/fairwork/internal/constants"
	"fairwork.com/fairwork/internal/marketplace"
	model "fairwork.com/fairwork/internal/models"
	repository "fairwork.com/fairwork/internal/repositories"
)

// SyncService polls the marketplace for the current status of in-flight
// submissions, so the audit pass sees which ones have been approved.
type SyncService struct {
	submissions *repository.SubmissionRepository
	pool        *marketplace.Pool
}

func NewSyncService(submissions *repository.SubmissionRepository, pool *marketplace.Pool) *SyncService {
	return &SyncService{submissions: submissions, pool: pool}
}

func (s *SyncService) Run(ctx context.Context) error {
	pollable, err := s.submissions.ListPollable(ctx)
	if err != nil {
		return err
	}

	for _, submission := range pollable {
		if err := s.syncOne(ctx, submission); err != nil {
			log.Printf("sync: submission %s failed: %v", submission.ID, err)
		}
	}
	return nil
}

func (s *SyncService) syncOne(ctx context.Context, submission model.Submission) error {
	group := submission.Task.TaskGroup
	client := s.pool.Get(group.Requester, group.Environment)

	raw, err := client.SubmissionStatus(ctx, submission.ID)
	if errors.Is(err, marketplace.ErrSubmissionUnknown) {
		// Likely returned or expired out from under us; stop polling it.
		log.Printf("sync: submission %s is no longer known to the marketplace, disabling polling", submission.ID)
		return s.submissions.UpdateStatus(ctx, submission.ID, constants.StatusError)
	}
	if err != nil {
		return err
	}

	status, err := constants.ParseSubmissionStatus(raw)
	if err != nil {
		return err
	}
	if status == submission.Status {
		return nil
	}

	log.Printf("sync: submission %s: %s -> %s", submission.ID, submission.Status, status)
	return s.submissions.UpdateStatus(ctx, submission.ID, status)
}
