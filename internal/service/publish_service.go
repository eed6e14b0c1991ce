package service

import (
	"Mediahub/internal/repository"
	"context"
	log "log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
)

// SweepResult 一次扫描的统计
type SweepResult struct {
	Due       int
	Published int64
	Skipped   int64
	Failed    int64
}

// SchedulerOptions 自动发布参数
type SchedulerOptions struct {
	BatchSize    int
	Concurrency  int
	ItemTimeout  time.Duration
	MaxAttempts  int
	RetryBackoff time.Duration
}

type PublishService interface {
	// Sweep 发布 scheduled_at <= now 的内容，单条失败不影响其余条目
	Sweep(ctx context.Context, now time.Time) (*SweepResult, error)
}

type publishServiceImpl struct {
	contentRepo repository.ContentRepo
	contentSvc  ContentService
	opts        SchedulerOptions
}

func NewPublishService(contentRepo repository.ContentRepo, contentSvc ContentService, opts SchedulerOptions) PublishService {
	if opts.BatchSize <= 0 {
		opts.BatchSize = 500
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 8
	}
	if opts.ItemTimeout <= 0 {
		opts.ItemTimeout = 5 * time.Second
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 3
	}
	if opts.RetryBackoff <= 0 {
		opts.RetryBackoff = 200 * time.Millisecond
	}
	return &publishServiceImpl{
		contentRepo: contentRepo,
		contentSvc:  contentSvc,
		opts:        opts,
	}
}

func (s *publishServiceImpl) Sweep(ctx context.Context, now time.Time) (*SweepResult, error) {
	now = now.UTC()
	var due []uint64
	err := retryBackoff(ctx, s.opts.MaxAttempts, s.opts.RetryBackoff, func() error {
		contents, err := s.contentRepo.ListDue(ctx, now, s.opts.BatchSize)
		if err != nil {
			return err
		}
		due = due[:0]
		for _, c := range contents {
			due = append(due, c.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	res := &SweepResult{Due: len(due)}
	if len(due) == 0 {
		return res, nil
	}

	var published, skipped, failed atomic.Int64
	g := new(errgroup.Group)
	g.SetLimit(s.opts.Concurrency)
	for _, id := range due {
		if ctx.Err() != nil {
			failed.Add(1)
			continue
		}
		g.Go(func() error {
			itemCtx, cancel := context.WithTimeout(ctx, s.opts.ItemTimeout)
			defer cancel()

			var ok bool
			err := retryBackoff(itemCtx, s.opts.MaxAttempts, s.opts.RetryBackoff, func() error {
				var err error
				ok, err = s.contentSvc.PublishDue(itemCtx, id, now)
				return err
			})
			switch {
			case err != nil:
				failed.Add(1)
				log.ErrorContext(ctx, "auto publish failed", "content_id", id, "err", err)
			case ok:
				published.Add(1)
				log.InfoContext(ctx, "content auto published", "content_id", id)
			default:
				// 已被手动修改或删除
				skipped.Add(1)
			}
			return nil
		})
	}
	_ = g.Wait()

	res.Published = published.Load()
	res.Skipped = skipped.Load()
	res.Failed = failed.Load()
	return res, nil
}
