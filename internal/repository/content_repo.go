package repository

import (
	"Mediahub/internal/model"
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ContentFilter 列表过滤条件，零值表示不过滤
type ContentFilter struct {
	ContentType model.ContentType
	Status      model.ContentStatus
	Limit       int
}

// TypeCount 按类型统计的数量
type TypeCount struct {
	ContentType model.ContentType
	Total       int64
}

// CreatedCounts 区间内新建 / 已发布的数量
type CreatedCounts struct {
	Total     int64
	Published int64
}

type ContentRepo interface {
	Create(ctx context.Context, content *model.Content) error
	GetByID(ctx context.Context, id uint64) (*model.Content, error)
	UpdateFields(ctx context.Context, content *model.Content) error
	Delete(ctx context.Context, userID, id uint64) (bool, error)
	List(ctx context.Context, userID uint64, filter ContentFilter) ([]*model.Content, error)
	ListDue(ctx context.Context, now time.Time, limit int) ([]*model.Content, error)
	PublishDue(ctx context.Context, id uint64, now time.Time) (bool, error)
	CountByType(ctx context.Context, userID uint64) ([]TypeCount, error)
	CountCreatedBetween(ctx context.Context, userID uint64, from, to time.Time) (*CreatedCounts, error)
	CountAll(ctx context.Context, userID uint64) (int64, error)
	SumTotals(ctx context.Context, userID uint64) (int64, decimal.Decimal, error)
}

type contentRepoImpl struct {
	db *gorm.DB
}

func NewContentRepo(db *gorm.DB) ContentRepo {
	return &contentRepoImpl{db: db}
}

// editableColumns 累计字段（view_count / revenue）不允许通过编辑修改
var editableColumns = []string{"title", "description", "content_type", "status", "scheduled_at", "platforms", "updated_at"}

func (s *contentRepoImpl) Create(ctx context.Context, content *model.Content) error {
	return s.db.WithContext(ctx).Create(content).Error
}

func (s *contentRepoImpl) GetByID(ctx context.Context, id uint64) (*model.Content, error) {
	var content model.Content
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&content).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &content, nil
}

func (s *contentRepoImpl) UpdateFields(ctx context.Context, content *model.Content) error {
	return s.db.WithContext(ctx).
		Model(content).
		Select(editableColumns).
		Updates(content).Error
}

func (s *contentRepoImpl) Delete(ctx context.Context, userID, id uint64) (bool, error) {
	result := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&model.Content{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (s *contentRepoImpl) List(ctx context.Context, userID uint64, filter ContentFilter) ([]*model.Content, error) {
	contents := make([]*model.Content, 0)
	query := s.db.WithContext(ctx).Where("user_id = ?", userID)
	if filter.ContentType != "" {
		query = query.Where("content_type = ?", filter.ContentType)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if err := query.Order("created_at DESC").Order("id DESC").Find(&contents).Error; err != nil {
		return nil, err
	}
	return contents, nil
}

// ListDue 查询到期的定时内容，走 idx_status_scheduled
func (s *contentRepoImpl) ListDue(ctx context.Context, now time.Time, limit int) ([]*model.Content, error) {
	contents := make([]*model.Content, 0)
	err := s.db.WithContext(ctx).
		Select("id", "user_id", "status", "scheduled_at").
		Where("status = ? AND scheduled_at <= ?", model.ContentStatusScheduled, now).
		Order("scheduled_at ASC").
		Limit(limit).
		Find(&contents).Error
	if err != nil {
		return nil, err
	}
	return contents, nil
}

// PublishDue 条件更新，已发布或被改期的内容不会被重复处理
func (s *contentRepoImpl) PublishDue(ctx context.Context, id uint64, now time.Time) (bool, error) {
	result := s.db.WithContext(ctx).
		Model(&model.Content{}).
		Where("id = ? AND status = ? AND scheduled_at <= ?", id, model.ContentStatusScheduled, now).
		Updates(map[string]any{
			"status":       model.ContentStatusPublished,
			"scheduled_at": nil,
			"updated_at":   now,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (s *contentRepoImpl) CountByType(ctx context.Context, userID uint64) ([]TypeCount, error) {
	counts := make([]TypeCount, 0)
	err := s.db.WithContext(ctx).
		Model(&model.Content{}).
		Select("content_type, COUNT(*) AS total").
		Where("user_id = ?", userID).
		Group("content_type").
		Scan(&counts).Error
	if err != nil {
		return nil, err
	}
	return counts, nil
}

// CountCreatedBetween 统计 [from, to) 内创建的内容
func (s *contentRepoImpl) CountCreatedBetween(ctx context.Context, userID uint64, from, to time.Time) (*CreatedCounts, error) {
	var counts CreatedCounts
	err := s.db.WithContext(ctx).
		Model(&model.Content{}).
		Select("COUNT(*) AS total, COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS published", model.ContentStatusPublished).
		Where("user_id = ? AND created_at >= ? AND created_at < ?", userID, from, to).
		Scan(&counts).Error
	if err != nil {
		return nil, err
	}
	return &counts, nil
}

func (s *contentRepoImpl) CountAll(ctx context.Context, userID uint64) (int64, error) {
	var total int64
	err := s.db.WithContext(ctx).
		Model(&model.Content{}).
		Where("user_id = ?", userID).
		Count(&total).Error
	return total, err
}

// SumTotals 用户名下内容的累计阅读量与收益
func (s *contentRepoImpl) SumTotals(ctx context.Context, userID uint64) (int64, decimal.Decimal, error) {
	var row struct {
		Views   int64
		Revenue decimal.Decimal
	}
	err := s.db.WithContext(ctx).
		Model(&model.Content{}).
		Select("COALESCE(SUM(view_count), 0) AS views, COALESCE(SUM(revenue), 0) AS revenue").
		Where("user_id = ?", userID).
		Scan(&row).Error
	if err != nil {
		return 0, decimal.Zero, err
	}
	return row.Views, row.Revenue, nil
}
