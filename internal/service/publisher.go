package service

import (
	"Mediahub/internal/model"
	"context"
)

// EventPublisher 内容状态变更的下游通知，实现需自行处理失败，不影响主流程
type EventPublisher interface {
	Publish(ctx context.Context, event *model.LifecycleEvent)
}

type noopPublisher struct{}

// NewNoopPublisher 未启用 Kafka 时使用
func NewNoopPublisher() EventPublisher {
	return noopPublisher{}
}

func (noopPublisher) Publish(context.Context, *model.LifecycleEvent) {}
