package repository

import (
	"Mediahub/internal/model"
	"context"

	"gorm.io/gorm"
)

type ActivityRepo interface {
	Create(ctx context.Context, activity *model.UserActivity) error
	ListRecent(ctx context.Context, userID uint64, limit int) ([]*model.UserActivity, error)
}

type activityRepoImpl struct {
	db *gorm.DB
}

func NewActivityRepo(db *gorm.DB) ActivityRepo {
	return &activityRepoImpl{db: db}
}

func (s *activityRepoImpl) Create(ctx context.Context, activity *model.UserActivity) error {
	return s.db.WithContext(ctx).Create(activity).Error
}

func (s *activityRepoImpl) ListRecent(ctx context.Context, userID uint64, limit int) ([]*model.UserActivity, error) {
	activities := make([]*model.UserActivity, 0, limit)
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&activities).Error
	if err != nil {
		return nil, err
	}
	return activities, nil
}
