package dto

import (
	"Mediahub/internal/model"
	"time"

	"github.com/shopspring/decimal"
)

// CreateContentDTO 新建内容，status 为空时视为草稿
type CreateContentDTO struct {
	Title       string     `json:"title" binding:"required" validate:"required,min=1,max=255"`
	Description string     `json:"description" validate:"max=65535"`
	ContentType string     `json:"content_type" binding:"required" validate:"required,oneof=post article video livestream"`
	Status      string     `json:"status" validate:"omitempty,oneof=draft scheduled published"`
	ScheduledAt *time.Time `json:"scheduled_at"`
	Platforms   []string   `json:"platforms" validate:"max=16,dive,min=1,max=32"`
}

// UpdateContentDTO 局部更新，nil 字段保持不变
type UpdateContentDTO struct {
	Title       *string    `json:"title" validate:"omitempty,min=1,max=255"`
	Description *string    `json:"description" validate:"omitempty,max=65535"`
	ContentType *string    `json:"content_type" validate:"omitempty,oneof=post article video livestream"`
	Status      *string    `json:"status" validate:"omitempty,oneof=draft scheduled published"`
	ScheduledAt *time.Time `json:"scheduled_at"`
	Platforms   []string   `json:"platforms" validate:"omitempty,max=16,dive,min=1,max=32"`
}

// ContentListDTO 列表查询
type ContentListDTO struct {
	ContentType string `form:"content_type" validate:"omitempty,oneof=post article video livestream"`
	Status      string `form:"status" validate:"omitempty,oneof=draft scheduled published"`
	Limit       int    `form:"limit" validate:"omitempty,min=1,max=1000"`
}

// ContentDTO 内容详情
type ContentDTO struct {
	ID          uint64              `json:"id"`
	UserID      uint64              `json:"user_id"`
	Title       string              `json:"title"`
	Description string              `json:"description"`
	ContentType model.ContentType   `json:"content_type"`
	Status      model.ContentStatus `json:"status"`
	ScheduledAt *time.Time          `json:"scheduled_at"`
	ViewCount   int64               `json:"view_count"`
	Revenue     decimal.Decimal     `json:"revenue"`
	Platforms   []string            `json:"platforms"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}
