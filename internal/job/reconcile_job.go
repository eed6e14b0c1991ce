package job

import (
	"Mediahub/internal/pkg/consts"
	"Mediahub/internal/pkg/logger"
	"Mediahub/internal/pkg/redis"
	"Mediahub/internal/service"
	"context"
	log "log/slog"
	"time"

	"github.com/google/uuid"
)

// ReconcileJob 比对内容累计值与会话流水，只输出差异，不做修正
type ReconcileJob struct {
	analyticsSvc service.AnalyticsService
	limit        int
}

func NewReconcileJob(analyticsSvc service.AnalyticsService, limit int) *ReconcileJob {
	return &ReconcileJob{
		analyticsSvc: analyticsSvc,
		limit:        limit,
	}
}

func (s *ReconcileJob) Run() {
	s.RunOnce(logger.NewJobContext("job-reconcile"))
}

// RunOnce 返回发现的差异条数
func (s *ReconcileJob) RunOnce(ctx context.Context) int {
	if redis.Enabled() {
		owner := uuid.NewString()
		ok, err := redis.TryLock(ctx, consts.ReconcileLock, owner, time.Hour, 1)
		if err != nil {
			log.ErrorContext(ctx, "acquire reconcile lock error", "err", err)
			return 0
		}
		if !ok {
			log.DebugContext(ctx, "reconcile is running on another instance")
			return 0
		}
		defer func() {
			_ = redis.UnLock(context.WithoutCancel(ctx), consts.ReconcileLock, owner)
		}()
	}

	drifts, err := s.analyticsSvc.AuditAccumulation(ctx, s.limit)
	if err != nil {
		log.ErrorContext(ctx, "reconcile accumulation error", "err", err)
		return 0
	}

	for _, d := range drifts {
		log.WarnContext(ctx, "content accumulation drift",
			"content_id", d.ContentID,
			"user_id", d.UserID,
			"view_count", d.ViewCount,
			"event_views", d.EventViews,
			"revenue", d.Revenue.String(),
			"event_revenue", d.EventRevenue.String())
	}
	log.InfoContext(ctx, "reconcile accumulation finished", "drift_count", len(drifts))
	return len(drifts)
}
