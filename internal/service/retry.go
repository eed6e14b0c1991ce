package service

import (
	"Mediahub/internal/repository"
	"context"
	"fmt"
	log "log/slog"
	"time"
)

// retryImmediate 交互式写入：瞬时错误立即重试，耗尽后返回 ErrTransientStore
func retryImmediate(ctx context.Context, attempts int, op string, fn func() error) error {
	if attempts < 1 {
		attempts = 1
	}
	var err error
	for i := 1; i <= attempts; i++ {
		if err = fn(); err == nil || !repository.IsTransient(err) {
			return err
		}
		log.WarnContext(ctx, "transient store error", "op", op, "attempt", i, "err", err)
		if ctx.Err() != nil {
			break
		}
	}
	return fmt.Errorf("%w: %s: %w", ErrTransientStore, op, err)
}

// retryBackoff 后台任务：瞬时错误按指数退避重试
func retryBackoff(ctx context.Context, attempts int, backoff time.Duration, fn func() error) error {
	if attempts < 1 {
		attempts = 1
	}
	var err error
	for i := 1; i <= attempts; i++ {
		if err = fn(); err == nil || !repository.IsTransient(err) {
			return err
		}
		if i == attempts {
			break
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: %w", ErrTransientStore, err)
		case <-time.After(backoff):
		}
		backoff *= 2
		if backoff > 5*time.Second {
			backoff = 5 * time.Second
		}
	}
	return fmt.Errorf("%w: %w", ErrTransientStore, err)
}
