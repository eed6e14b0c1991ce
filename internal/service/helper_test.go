package service

import (
	"Mediahub/internal/model"
	"Mediahub/internal/repository"
	"Mediahub/internal/testsupport"
	"context"
	"database/sql/driver"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"gorm.io/gorm"
)

var baseTime = time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)

type testEnv struct {
	db          *gorm.DB
	clock       *testsupport.Clock
	contentRepo repository.ContentRepo
	eventRepo   repository.SessionEventRepo
	subRepo     repository.SubscriptionRepo
	quota       QuotaService
	activity    ActivityService
	publisher   *recordingPublisher
	content     ContentService
	analytics   AnalyticsService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testsupport.NewTestDB(t)
	env := &testEnv{
		db:          db,
		clock:       testsupport.NewClock(baseTime),
		contentRepo: repository.NewContentRepo(db),
		eventRepo:   repository.NewSessionEventRepo(db),
		subRepo:     repository.NewSubscriptionRepo(db),
		publisher:   &recordingPublisher{},
	}
	env.quota = NewQuotaService(env.contentRepo, env.subRepo, 5, env.clock.Now)
	env.activity = NewActivityService(repository.NewActivityRepo(db), env.clock.Now)
	env.content = NewContentService(env.contentRepo, env.eventRepo, env.quota, env.activity, env.publisher, ContentOptions{
		WriteRetries: 3,
		Location:     time.UTC,
		Now:          env.clock.Now,
	})
	env.analytics = NewAnalyticsService(env.contentRepo, env.eventRepo, AnalyticsOptions{
		Location:     time.UTC,
		DefaultDays:  30,
		QueryTimeout: 5 * time.Second,
		CacheTTL:     time.Minute,
		Now:          env.clock.Now,
	})
	return env
}

// insertContent 绕过服务层直接落库，用于构造历史数据
func (e *testEnv) insertContent(t *testing.T, c *model.Content) *model.Content {
	t.Helper()
	if c.Status == "" {
		c.Status = model.ContentStatusDraft
	}
	if c.ContentType == "" {
		c.ContentType = model.ContentTypePost
	}
	if c.Title == "" {
		c.Title = "seed"
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = e.clock.Now()
	}
	c.UpdatedAt = c.CreatedAt
	if err := e.db.Create(c).Error; err != nil {
		t.Fatalf("insert content: %v", err)
	}
	return c
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []model.LifecycleEvent
}

func (p *recordingPublisher) Publish(_ context.Context, event *model.LifecycleEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, *event)
}

func (p *recordingPublisher) names() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	res := make([]string, 0, len(p.events))
	for _, e := range p.events {
		res = append(res, e.Event)
	}
	return res
}

// flakyContentRepo 前 failures 次写入返回连接错误
type flakyContentRepo struct {
	repository.ContentRepo
	failures atomic.Int32
	calls    atomic.Int32
}

func (r *flakyContentRepo) fail() error {
	r.calls.Add(1)
	if r.failures.Add(-1) >= 0 {
		return driver.ErrBadConn
	}
	return nil
}

func (r *flakyContentRepo) Create(ctx context.Context, content *model.Content) error {
	if err := r.fail(); err != nil {
		return err
	}
	return r.ContentRepo.Create(ctx, content)
}

func (r *flakyContentRepo) PublishDue(ctx context.Context, id uint64, now time.Time) (bool, error) {
	if err := r.fail(); err != nil {
		return false, err
	}
	return r.ContentRepo.PublishDue(ctx, id, now)
}

// lostAckEventRepo 写入已提交但前 failures 次仍返回连接错误，模拟提交后断连
type lostAckEventRepo struct {
	repository.SessionEventRepo
	failures atomic.Int32
	calls    atomic.Int32
}

func (r *lostAckEventRepo) RecordAndAccumulate(ctx context.Context, event *model.SessionEvent) (*repository.RecordResult, error) {
	r.calls.Add(1)
	res, err := r.SessionEventRepo.RecordAndAccumulate(ctx, event)
	if err == nil && r.failures.Add(-1) >= 0 {
		return nil, driver.ErrBadConn
	}
	return res, err
}

func ptr[T any](v T) *T {
	return &v
}
