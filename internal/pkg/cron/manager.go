package cron

import (
	"Mediahub/internal/job"
	"Mediahub/internal/pkg/logger"
	"context"
	log "log/slog"

	"github.com/robfig/cron/v3"
)

type Manager struct {
	engine         *cron.Cron
	autoPublishJob *job.AutoPublishJob
	reconcileJob   *job.ReconcileJob
	publishSpec    string
	reconcileSpec  string
}

func NewCronManager(
	autoPublishJob *job.AutoPublishJob,
	reconcileJob *job.ReconcileJob,
	publishSpec, reconcileSpec string,
) *Manager {
	return &Manager{
		engine: cron.New(
			cron.WithSeconds(),
			cron.WithLogger(logger.CronLogger{}),
			// 上一轮未结束时跳过本轮，避免扫描叠加
			cron.WithChain(cron.Recover(logger.CronLogger{}), cron.SkipIfStillRunning(logger.CronLogger{})),
		),
		autoPublishJob: autoPublishJob,
		reconcileJob:   reconcileJob,
		publishSpec:    publishSpec,
		reconcileSpec:  reconcileSpec,
	}
}

// RegisterJobs 注册定时任务，spec 为空表示不启用
func (s *Manager) RegisterJobs() error {
	if s.publishSpec != "" {
		if _, err := s.engine.AddJob(s.publishSpec, s.autoPublishJob); err != nil {
			return err
		}
	}
	if s.reconcileSpec != "" && s.reconcileJob != nil {
		if _, err := s.engine.AddJob(s.reconcileSpec, s.reconcileJob); err != nil {
			return err
		}
	}
	return nil
}

func (s *Manager) Entries() int {
	return len(s.engine.Entries())
}

func (s *Manager) Start() {
	log.Info("Cron 定时任务引擎启动")
	s.engine.Start()
}

// Stop 停止调度并等待正在执行的任务结束
func (s *Manager) Stop(ctx context.Context) {
	log.Info("Cron 定时任务引擎停止")
	done := s.engine.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		log.Warn("cron jobs did not finish before shutdown")
	}
}

// InitCron 注册并启动定时任务
func InitCron(mgr *Manager) error {
	if err := mgr.RegisterJobs(); err != nil {
		return err
	}
	log.Info("Cron Jobs starting...", "entries", mgr.Entries())
	mgr.Start()
	return nil
}
