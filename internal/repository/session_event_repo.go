package repository

import (
	"Mediahub/internal/model"
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RecordResult 写入会话汇总的结果
type RecordResult struct {
	// Duplicated session_key 已存在，本次未写入
	Duplicated bool
	// Accumulated 累加到了内容上
	Accumulated bool
}

// PeriodSums 区间内的会话指标汇总
type PeriodSums struct {
	NewFollowers int64
	Revenue      decimal.Decimal
	Views        int64
}

// AccumulationDrift 内容累计值与事件汇总不一致的记录
type AccumulationDrift struct {
	ContentID    uint64
	UserID       uint64
	ViewCount    int64
	Revenue      decimal.Decimal
	EventViews   int64
	EventRevenue decimal.Decimal
}

type SessionEventRepo interface {
	RecordAndAccumulate(ctx context.Context, event *model.SessionEvent) (*RecordResult, error)
	GetBySessionKey(ctx context.Context, userID uint64, sessionKey string) (*model.SessionEvent, error)
	SumBetween(ctx context.Context, userID uint64, from, to time.Time) (*PeriodSums, error)
	SumAll(ctx context.Context, userID uint64) (*PeriodSums, error)
	AvgViewsByContentType(ctx context.Context, userID uint64, contentType model.ContentType) (float64, error)
	FindAccumulationDrift(ctx context.Context, limit int) ([]AccumulationDrift, error)
}

type sessionEventRepoImpl struct {
	db *gorm.DB
}

func NewSessionEventRepo(db *gorm.DB) SessionEventRepo {
	return &sessionEventRepoImpl{db: db}
}

// RecordAndAccumulate 在同一事务中追加事件并累加到所属内容。
// 内容不存在或不属于该用户时只写事件；session_key 重复时整体跳过。
func (s *sessionEventRepoImpl) RecordAndAccumulate(ctx context.Context, event *model.SessionEvent) (*RecordResult, error) {
	res := &RecordResult{}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		insert := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "session_key"}},
			DoNothing: true,
		}).Create(event)
		if insert.Error != nil {
			return insert.Error
		}
		if insert.RowsAffected == 0 {
			res.Duplicated = true
			return nil
		}
		if event.ContentID == nil {
			return nil
		}

		var content model.Content
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id").
			Where("id = ? AND user_id = ?", *event.ContentID, event.UserID).
			First(&content).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}

		err = tx.Model(&model.Content{}).
			Where("id = ?", content.ID).
			UpdateColumns(map[string]any{
				"view_count": gorm.Expr("view_count + ?", event.Views),
				"revenue":    gorm.Expr("revenue + CAST(? AS DECIMAL(14,2))", event.Revenue),
			}).Error
		if err != nil {
			return err
		}
		res.Accumulated = true
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// GetBySessionKey 不存在时返回 nil, nil
func (s *sessionEventRepoImpl) GetBySessionKey(ctx context.Context, userID uint64, sessionKey string) (*model.SessionEvent, error) {
	var event model.SessionEvent
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND session_key = ?", userID, sessionKey).
		First(&event).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &event, nil
}

// SumBetween 统计 event_date 在 [from, to] 内的指标
func (s *sessionEventRepoImpl) SumBetween(ctx context.Context, userID uint64, from, to time.Time) (*PeriodSums, error) {
	var sums PeriodSums
	err := s.sumQuery(ctx, userID).
		Where("event_date >= ? AND event_date <= ?", from, to).
		Scan(&sums).Error
	if err != nil {
		return nil, err
	}
	return &sums, nil
}

func (s *sessionEventRepoImpl) SumAll(ctx context.Context, userID uint64) (*PeriodSums, error) {
	var sums PeriodSums
	if err := s.sumQuery(ctx, userID).Scan(&sums).Error; err != nil {
		return nil, err
	}
	return &sums, nil
}

func (s *sessionEventRepoImpl) sumQuery(ctx context.Context, userID uint64) *gorm.DB {
	return s.db.WithContext(ctx).
		Model(&model.SessionEvent{}).
		Select("COALESCE(SUM(new_followers), 0) AS new_followers, "+
			"COALESCE(SUM(revenue), 0) AS revenue, "+
			"COALESCE(SUM(views), 0) AS views").
		Where("user_id = ?", userID)
}

// AvgViewsByContentType 某类内容关联事件的平均观看数
func (s *sessionEventRepoImpl) AvgViewsByContentType(ctx context.Context, userID uint64, contentType model.ContentType) (float64, error) {
	var avg float64
	err := s.db.WithContext(ctx).
		Table("session_events AS e").
		Select("COALESCE(AVG(e.views), 0)").
		Joins("JOIN contents AS c ON c.id = e.content_id AND c.user_id = e.user_id").
		Where("e.user_id = ? AND c.content_type = ?", userID, contentType).
		Scan(&avg).Error
	return avg, err
}

// FindAccumulationDrift 对账：累计值与事件流水之和不一致的内容
func (s *sessionEventRepoImpl) FindAccumulationDrift(ctx context.Context, limit int) ([]AccumulationDrift, error) {
	drifts := make([]AccumulationDrift, 0)
	err := s.db.WithContext(ctx).
		Table("contents AS c").
		Select("c.id AS content_id, c.user_id, c.view_count, c.revenue, " +
			"COALESCE(SUM(e.views), 0) AS event_views, COALESCE(SUM(e.revenue), 0) AS event_revenue").
		Joins("LEFT JOIN session_events AS e ON e.content_id = c.id AND e.user_id = c.user_id").
		Group("c.id, c.user_id, c.view_count, c.revenue").
		Having("c.view_count <> COALESCE(SUM(e.views), 0) OR c.revenue <> COALESCE(SUM(e.revenue), 0)").
		Order("c.id ASC").
		Limit(limit).
		Scan(&drifts).Error
	if err != nil {
		return nil, err
	}
	return drifts, nil
}
