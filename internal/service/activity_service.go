package service

import (
	"Mediahub/internal/api/dto"
	"Mediahub/internal/model"
	"Mediahub/internal/pkg/consts"
	"Mediahub/internal/repository"
	"context"
	log "log/slog"
	"time"

	"github.com/goccy/go-json"
	"github.com/jinzhu/copier"
	"gorm.io/datatypes"
)

type ActivityService interface {
	Record(ctx context.Context, userID uint64, action string, details map[string]any)
	Recent(ctx context.Context, userID uint64) ([]*dto.ActivityDTO, error)
}

type activityServiceImpl struct {
	activityRepo repository.ActivityRepo
	nowFn        func() time.Time
}

func NewActivityService(activityRepo repository.ActivityRepo, nowFn func() time.Time) ActivityService {
	if nowFn == nil {
		nowFn = time.Now
	}
	return &activityServiceImpl{activityRepo: activityRepo, nowFn: nowFn}
}

// Record 写操作流水，失败只记日志
func (s *activityServiceImpl) Record(ctx context.Context, userID uint64, action string, details map[string]any) {
	raw, err := json.Marshal(details)
	if err != nil {
		raw = []byte("{}")
	}
	activity := &model.UserActivity{
		UserID:    userID,
		Action:    action,
		Details:   datatypes.JSON(raw),
		CreatedAt: s.nowFn().UTC().Truncate(time.Microsecond),
	}
	if err = s.activityRepo.Create(ctx, activity); err != nil {
		log.WarnContext(ctx, "record user activity failed", "user_id", userID, "action", action, "err", err)
	}
}

func (s *activityServiceImpl) Recent(ctx context.Context, userID uint64) ([]*dto.ActivityDTO, error) {
	activities, err := s.activityRepo.ListRecent(ctx, userID, consts.RecentActivitySize)
	if err != nil {
		return nil, err
	}
	res := make([]*dto.ActivityDTO, 0, len(activities))
	for _, a := range activities {
		item := &dto.ActivityDTO{}
		_ = copier.Copy(item, a)
		item.Details = json.RawMessage(a.Details)
		res = append(res, item)
	}
	return res, nil
}
