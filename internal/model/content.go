package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// ContentType 内容类型
type ContentType string

const (
	ContentTypePost       ContentType = "post"
	ContentTypeArticle    ContentType = "article"
	ContentTypeVideo      ContentType = "video"
	ContentTypeLivestream ContentType = "livestream"
)

// Valid 是否为已知类型
func (t ContentType) Valid() bool {
	switch t {
	case ContentTypePost, ContentTypeArticle, ContentTypeVideo, ContentTypeLivestream:
		return true
	}
	return false
}

// ContentStatus 发布状态
type ContentStatus string

const (
	ContentStatusDraft     ContentStatus = "draft"
	ContentStatusScheduled ContentStatus = "scheduled"
	ContentStatusPublished ContentStatus = "published"
)

func (s ContentStatus) Valid() bool {
	switch s {
	case ContentStatusDraft, ContentStatusScheduled, ContentStatusPublished:
		return true
	}
	return false
}

// Content 用户内容。ScheduledAt 非空当且仅当 Status 为 scheduled；
// ViewCount / Revenue 只能通过会话汇总累加。
type Content struct {
	ID          uint64                      `gorm:"primaryKey" json:"id"`
	UserID      uint64                      `gorm:"not null;index:idx_user_status_scheduled,priority:1;index:idx_contents_user_created,priority:1" json:"user_id"`
	Title       string                      `gorm:"type:varchar(255);not null" json:"title"`
	Description string                      `gorm:"type:text" json:"description"`
	ContentType ContentType                 `gorm:"type:varchar(16);not null" json:"content_type"`
	Status      ContentStatus               `gorm:"type:varchar(16);not null;index:idx_user_status_scheduled,priority:2;index:idx_status_scheduled,priority:1" json:"status"`
	ScheduledAt *time.Time                  `gorm:"precision:6;index:idx_user_status_scheduled,priority:3;index:idx_status_scheduled,priority:2" json:"scheduled_at"`
	ViewCount   int64                       `gorm:"not null;default:0" json:"view_count"`
	Revenue     decimal.Decimal             `gorm:"type:decimal(14,2);not null;default:0" json:"revenue"`
	Platforms   datatypes.JSONSlice[string] `json:"platforms"`
	CreatedAt   time.Time                   `gorm:"precision:6;index:idx_contents_user_created,priority:2" json:"created_at"`
	UpdatedAt   time.Time                   `gorm:"precision:6" json:"updated_at"`
}

func (Content) TableName() string {
	return "contents"
}
