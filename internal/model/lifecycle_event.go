package model

import "time"

const (
	EventContentCreated   = "content.created"
	EventContentUpdated   = "content.updated"
	EventContentDeleted   = "content.deleted"
	EventContentPublished = "content.published"
)

// LifecycleEvent 内容状态变更通知
type LifecycleEvent struct {
	Event      string        `json:"event"`
	ContentID  uint64        `json:"content_id"`
	UserID     uint64        `json:"user_id"`
	Status     ContentStatus `json:"status"`
	OccurredAt time.Time     `json:"occurred_at"`
}
