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

// AutoPublishJob 定时扫描到期内容并发布。多实例部署时通过 Redis 锁保证同一时刻只有一个实例在扫描。
type AutoPublishJob struct {
	publishSvc service.PublishService
	lockTTL    time.Duration
	nowFn      func() time.Time
}

func NewAutoPublishJob(publishSvc service.PublishService, lockTTL time.Duration, nowFn func() time.Time) *AutoPublishJob {
	if nowFn == nil {
		nowFn = time.Now
	}
	return &AutoPublishJob{
		publishSvc: publishSvc,
		lockTTL:    lockTTL,
		nowFn:      nowFn,
	}
}

func (s *AutoPublishJob) Run() {
	s.RunOnce(logger.NewJobContext("job-publish"))
}

// RunOnce 执行一次扫描，返回是否实际执行
func (s *AutoPublishJob) RunOnce(ctx context.Context) bool {
	if redis.Enabled() {
		owner := uuid.NewString()
		ok, err := redis.TryLock(ctx, consts.AutoPublishLock, owner, s.lockTTL, 1)
		if err != nil {
			log.ErrorContext(ctx, "acquire auto publish lock error", "err", err)
			return false
		}
		if !ok {
			log.DebugContext(ctx, "auto publish is running on another instance")
			return false
		}
		defer func() {
			if err := redis.UnLock(context.WithoutCancel(ctx), consts.AutoPublishLock, owner); err != nil {
				log.WarnContext(ctx, "release auto publish lock error", "err", err)
			}
		}()
	}

	start := time.Now()
	res, err := s.publishSvc.Sweep(ctx, s.nowFn())
	if err != nil {
		log.ErrorContext(ctx, "auto publish sweep error", "err", err)
		return true
	}
	if res.Due == 0 {
		return true
	}

	log.InfoContext(ctx, "auto publish sweep finished",
		"due", res.Due,
		"published", res.Published,
		"skipped", res.Skipped,
		"failed", res.Failed,
		"cost", time.Since(start).String())
	return true
}
