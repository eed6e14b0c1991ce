package dto

import "github.com/shopspring/decimal"

// SessionSummaryDTO 会话结束汇总，date 为用户本地日期 YYYY-MM-DD，缺省为当天
type SessionSummaryDTO struct {
	UserID       uint64          `json:"user_id,omitempty"`
	ContentID    *uint64         `json:"content_id"`
	SessionKey   *string         `json:"session_key" validate:"omitempty,min=1,max=64"`
	Date         string          `json:"date" validate:"omitempty,datetime=2006-01-02"`
	Views        int64           `json:"views" validate:"min=0"`
	Revenue      decimal.Decimal `json:"revenue"`
	NewFollowers int64           `json:"new_followers" validate:"min=0"`
	Clicks       int64           `json:"clicks" validate:"min=0"`
	Likes        int64           `json:"likes" validate:"min=0"`
	Comments     int64           `json:"comments" validate:"min=0"`
	Shares       int64           `json:"shares" validate:"min=0"`
}

// SessionResultDTO 写入结果
type SessionResultDTO struct {
	EventID     uint64 `json:"event_id,omitempty"`
	EventDate   string `json:"event_date"`
	Duplicated  bool   `json:"duplicated"`
	Accumulated bool   `json:"accumulated"`
	Warning     string `json:"warning,omitempty"`
}
