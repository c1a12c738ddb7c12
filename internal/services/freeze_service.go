package services

import (
	"context"
	"fmt"
	"log"

	"fairwork.com/fairwork/internal/constants"
	"fairwork.com/fairwork/internal/marketplace"
	model "fairwork.com/fairwork/internal/models"
	repository "fairwork.com/fairwork/internal/repositories"
)

// FreezeService is the manual-intervention surface: suspending a
// (worker, requester) pair pulls its pending bonuses and its reports out of
// the audit passes until the pair is unfrozen.
type FreezeService struct {
	freezes    *repository.FreezeRepository
	audits     *repository.AuditRepository
	requesters *repository.RequesterRepository
	pool       *marketplace.Pool
}

func NewFreezeService(
	freezes *repository.FreezeRepository,
	audits *repository.AuditRepository,
	requesters *repository.RequesterRepository,
	pool *marketplace.Pool,
) *FreezeService {
	return &FreezeService{
		freezes:    freezes,
		audits:     audits,
		requesters: requesters,
		pool:       pool,
	}
}

// Freeze suspends the pair, marks its open audits frozen, and tells the worker
// why. Payments already made are not reversed.
func (s *FreezeService) Freeze(ctx context.Context, workerID, requesterID, reason string) (*model.Freeze, error) {
	requester, err := s.requesters.FindByID(ctx, requesterID)
	if err != nil {
		return nil, err
	}

	freeze, err := s.freezes.Create(ctx, workerID, requesterID, reason)
	if err != nil {
		return nil, err
	}

	if err := s.audits.SetFrozenForPair(ctx, requesterID, workerID, true); err != nil {
		return nil, fmt.Errorf("marking audits frozen: %w", err)
	}

	client := s.pool.Get(requester, constants.EnvProduction)
	if err := client.NotifyWorker(ctx, workerID, freezeWorkerSubject(), freezeWorkerMessage(reason)); err != nil {
		log.Printf("freeze: notifying worker %s failed: %v", workerID, err)
	}

	return freeze, nil
}

// Unfreeze lifts the suspension; the pair's audits rejoin the next passes.
func (s *FreezeService) Unfreeze(ctx context.Context, workerID, requesterID string) error {
	if err := s.freezes.DeleteByPair(ctx, workerID, requesterID); err != nil {
		return err
	}
	return s.audits.SetFrozenForPair(ctx, requesterID, workerID, false)
}
