package repository

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"fairwork.com/fairwork/internal/constants"
	model "fairwork.com/fairwork/internal/models"
)

type TaskGroupRepository struct {
	db *gorm.DB
}

func NewTaskGroupRepository(db *gorm.DB) *TaskGroupRepository {
	return &TaskGroupRepository{db: db}
}

// GetOrCreate records a task group on first observation. An existing group is
// immutable except for its payment, which may be corrected by re-query.
func (r *TaskGroupRepository) GetOrCreate(ctx context.Context, id string, payment decimal.Decimal, env constants.Environment, requesterID string) (*model.TaskGroup, error) {
	var group model.TaskGroup
	err := r.db.WithContext(ctx).First(&group, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		group = model.TaskGroup{
			ID:          id,
			Payment:     payment,
			Environment: env,
			RequesterID: requesterID,
			CreatedAt:   time.Now().UTC(),
		}
		if err := r.db.WithContext(ctx).Create(&group).Error; err != nil {
			return nil, err
		}
		return &group, nil
	}
	if err != nil {
		return nil, err
	}

	if !group.Payment.Equal(payment) {
		group.Payment = payment
		if err := r.db.WithContext(ctx).Model(&group).Update("payment", payment).Error; err != nil {
			return nil, err
		}
	}

	return &group, nil
}

func (r *TaskGroupRepository) FindByID(ctx context.Context, id string) (*model.TaskGroup, error) {
	var group model.TaskGroup
	err := r.db.WithContext(ctx).Preload("Requester").First(&group, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &group, nil
}

func (r *TaskGroupRepository) FindTask(ctx context.Context, id string) (*model.Task, error) {
	var task model.Task
	err := r.db.WithContext(ctx).Preload("TaskGroup").First(&task, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// GetOrCreateTask records a task on first observation.
func (r *TaskGroupRepository) GetOrCreateTask(ctx context.Context, id, groupID string) (*model.Task, error) {
	var task model.Task
	err := r.db.WithContext(ctx).First(&task, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		task = model.Task{
			ID:          id,
			TaskGroupID: groupID,
			CreatedAt:   time.Now().UTC(),
		}
		if err := r.db.WithContext(ctx).Create(&task).Error; err != nil {
			return nil, err
		}
		return &task, nil
	}
	if err != nil {
		return nil, err
	}
	return &task, nil
}
