package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	apperrors "fairwork.com/fairwork/internal/errors"
	model "fairwork.com/fairwork/internal/models"
)

type RequesterRepository struct {
	db *gorm.DB
}

func NewRequesterRepository(db *gorm.DB) *RequesterRepository {
	return &RequesterRepository{db: db}
}

// Upsert registers a requester or rotates their marketplace keys in place.
func (r *RequesterRepository) Upsert(ctx context.Context, accountID, accessKey, secretKey, email string) (*model.Requester, error) {
	var requester model.Requester
	err := r.db.WithContext(ctx).First(&requester, "account_id = ?", accountID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		requester = model.Requester{
			AccountID: accountID,
			AccessKey: accessKey,
			SecretKey: secretKey,
			Email:     email,
			CreatedAt: time.Now().UTC(),
		}
		if err := r.db.WithContext(ctx).Create(&requester).Error; err != nil {
			return nil, err
		}
		return &requester, nil
	}
	if err != nil {
		return nil, err
	}

	if requester.AccessKey != accessKey || requester.SecretKey != secretKey || (email != "" && requester.Email != email) {
		requester.AccessKey = accessKey
		requester.SecretKey = secretKey
		if email != "" {
			requester.Email = email
		}
		if err := r.db.WithContext(ctx).Save(&requester).Error; err != nil {
			return nil, err
		}
	}

	return &requester, nil
}

func (r *RequesterRepository) FindByID(ctx context.Context, accountID string) (*model.Requester, error) {
	var requester model.Requester
	err := r.db.WithContext(ctx).First(&requester, "account_id = ?", accountID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrRequesterNotFound
	}
	if err != nil {
		return nil, err
	}
	return &requester, nil
}
