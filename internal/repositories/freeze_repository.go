package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	model "fairwork.com/fairwork/internal/models"
)

type FreezeRepository struct {
	db *gorm.DB
}

var ErrFreezeExists = errors.New("pair is already frozen")
var ErrFreezeNotFound = errors.New("pair is not frozen")

func NewFreezeRepository(db *gorm.DB) *FreezeRepository {
	return &FreezeRepository{db: db}
}

func (r *FreezeRepository) Create(ctx context.Context, workerID, requesterID, reason string) (*model.Freeze, error) {
	existing, err := r.FindByPair(ctx, workerID, requesterID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrFreezeExists
	}

	freeze := &model.Freeze{
		ID:          uuid.NewString(),
		WorkerID:    workerID,
		RequesterID: requesterID,
		Reason:      reason,
		CreatedAt:   time.Now().UTC(),
	}
	if err := r.db.WithContext(ctx).Create(freeze).Error; err != nil {
		return nil, err
	}
	return freeze, nil
}

func (r *FreezeRepository) FindByPair(ctx context.Context, workerID, requesterID string) (*model.Freeze, error) {
	var freeze model.Freeze
	err := r.db.WithContext(ctx).
		First(&freeze, "worker_id = ? AND requester_id = ?", workerID, requesterID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &freeze, nil
}

func (r *FreezeRepository) DeleteByPair(ctx context.Context, workerID, requesterID string) error {
	res := r.db.WithContext(ctx).
		Where("worker_id = ? AND requester_id = ?", workerID, requesterID).
		Delete(&model.Freeze{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrFreezeNotFound
	}
	return nil
}

// FrozenWorkerIDs lists the workers currently frozen for one requester, for
// exclusion from that requester's rate estimates.
func (r *FreezeRepository) FrozenWorkerIDs(ctx context.Context, requesterID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).Model(&model.Freeze{}).
		Where("requester_id = ?", requesterID).
		Order("worker_id asc").
		Pluck("worker_id", &ids).Error
	return ids, err
}
