package job

import (
	"Mediahub/internal/pkg/consts"
	"Mediahub/internal/repository"
	"Mediahub/internal/service"
	"Mediahub/internal/testsupport"
	"bytes"
	"context"
	log "log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePublishService struct {
	calls atomic.Int32
	last  time.Time
}

func (f *fakePublishService) Sweep(_ context.Context, now time.Time) (*service.SweepResult, error) {
	f.calls.Add(1)
	f.last = now
	return &service.SweepResult{Due: 1, Published: 1}, nil
}

func TestAutoPublishJobWithoutRedis(t *testing.T) {
	fake := &fakePublishService{}
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	job := NewAutoPublishJob(fake, time.Second, func() time.Time { return now })

	assert.True(t, job.RunOnce(context.Background()))
	assert.Equal(t, int32(1), fake.calls.Load())
	assert.Equal(t, now, fake.last)
}

func TestAutoPublishJobLock(t *testing.T) {
	mr := testsupport.UseMiniRedis(t)
	fake := &fakePublishService{}
	job := NewAutoPublishJob(fake, 10*time.Second, nil)

	require.NoError(t, mr.Set(consts.AutoPublishLock, "other-instance"))
	assert.False(t, job.RunOnce(context.Background()))
	assert.Zero(t, fake.calls.Load())

	mr.Del(consts.AutoPublishLock)
	assert.True(t, job.RunOnce(context.Background()))
	assert.Equal(t, int32(1), fake.calls.Load())
	// 执行完毕释放锁
	assert.False(t, mr.Exists(consts.AutoPublishLock))
}

type fakeAnalytics struct {
	service.AnalyticsService
	drifts []repository.AccumulationDrift
	calls  atomic.Int32
}

func (f *fakeAnalytics) AuditAccumulation(context.Context, int) ([]repository.AccumulationDrift, error) {
	f.calls.Add(1)
	return f.drifts, nil
}

func TestReconcileJob(t *testing.T) {
	fake := &fakeAnalytics{drifts: []repository.AccumulationDrift{
		{ContentID: 1, UserID: 2, ViewCount: 10, EventViews: 8, Revenue: decimal.Zero, EventRevenue: decimal.Zero},
	}}
	assert.Equal(t, 1, NewReconcileJob(fake, 100).RunOnce(context.Background()))
}

func TestReconcileJobLockError(t *testing.T) {
	mr := testsupport.UseMiniRedis(t)
	var buf bytes.Buffer
	prev := log.Default()
	log.SetDefault(log.New(log.NewJSONHandler(&buf, nil)))
	t.Cleanup(func() { log.SetDefault(prev) })

	fake := &fakeAnalytics{}
	job := NewReconcileJob(fake, 100)

	mr.SetError("ERR injected failure")
	assert.Equal(t, 0, job.RunOnce(context.Background()))
	assert.Zero(t, fake.calls.Load())
	assert.Contains(t, buf.String(), "acquire reconcile lock error")

	mr.SetError("")
	require.NoError(t, mr.Set(consts.ReconcileLock, "other-instance"))
	assert.Equal(t, 0, job.RunOnce(context.Background()))
	assert.Zero(t, fake.calls.Load())

	mr.Del(consts.ReconcileLock)
	assert.Equal(t, 0, job.RunOnce(context.Background()))
	assert.Equal(t, int32(1), fake.calls.Load())
	assert.False(t, mr.Exists(consts.ReconcileLock))
}
