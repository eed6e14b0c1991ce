package model

import (
	"time"

	"gorm.io/datatypes"
)

const (
	ActivityCreateContent = "create_content"
	ActivityUpdateContent = "update_content"
	ActivityDeleteContent = "delete_content"
	ActivityPublish       = "publish_content"
	ActivityRecordSession = "record_session"
)

// UserActivity 用户操作流水
type UserActivity struct {
	ID        uint64         `gorm:"primaryKey" json:"id"`
	UserID    uint64         `gorm:"not null;index:idx_activities_user_created,priority:1" json:"user_id"`
	Action    string         `gorm:"type:varchar(32);not null" json:"action"`
	Details   datatypes.JSON `json:"details"`
	CreatedAt time.Time      `gorm:"precision:6;index:idx_activities_user_created,priority:2" json:"created_at"`
}

func (UserActivity) TableName() string {
	return "user_activities"
}
