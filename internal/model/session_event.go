package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// SessionEvent 一次会话结束后的汇总记录，写入后不再修改
type SessionEvent struct {
	ID           uint64          `gorm:"primaryKey" json:"id"`
	UserID       uint64          `gorm:"not null;index:idx_events_user_date,priority:1" json:"user_id"`
	ContentID    *uint64         `gorm:"index:idx_events_content" json:"content_id"`
	SessionKey   *string         `gorm:"type:varchar(64);uniqueIndex:uk_session_key" json:"session_key,omitempty"`
	EventDate    time.Time       `gorm:"type:date;not null;index:idx_events_user_date,priority:2" json:"event_date"`
	Views        int64           `gorm:"not null;default:0" json:"views"`
	Revenue      decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0" json:"revenue"`
	NewFollowers int64           `gorm:"not null;default:0" json:"new_followers"`
	Clicks       int64           `gorm:"not null;default:0" json:"clicks"`
	Likes        int64           `gorm:"not null;default:0" json:"likes"`
	Comments     int64           `gorm:"not null;default:0" json:"comments"`
	Shares       int64           `gorm:"not null;default:0" json:"shares"`
	CreatedAt    time.Time       `gorm:"precision:6" json:"created_at"`
}

func (SessionEvent) TableName() string {
	return "session_events"
}
