package repository

import (
	"Mediahub/internal/model"
	"context"
	"errors"

	"gorm.io/gorm"
)

// SubscriptionRepo 订阅数据由计费服务维护，这里只读
type SubscriptionRepo interface {
	GetByUserID(ctx context.Context, userID uint64) (*model.Subscription, error)
}

type subscriptionRepoImpl struct {
	db *gorm.DB
}

func NewSubscriptionRepo(db *gorm.DB) SubscriptionRepo {
	return &subscriptionRepoImpl{db: db}
}

func (s *subscriptionRepoImpl) GetByUserID(ctx context.Context, userID uint64) (*model.Subscription, error) {
	var sub model.Subscription
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&sub).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &sub, nil
}
