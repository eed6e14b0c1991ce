package service

import (
	"Mediahub/internal/api/dto"
	"Mediahub/internal/model"
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPublishService(env *testEnv, contentSvc ContentService) PublishService {
	return NewPublishService(env.contentRepo, contentSvc, SchedulerOptions{
		BatchSize:    500,
		Concurrency:  4,
		ItemTimeout:  time.Second,
		MaxAttempts:  3,
		RetryBackoff: time.Millisecond,
	})
}

func TestSweepPublishesDueContent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	sweeper := newPublishService(env, env.content)

	at := env.clock.Now().Add(time.Second)
	created, err := env.content.CreateContent(ctx, 1, &dto.CreateContentDTO{
		Title: "soon", ContentType: "post", Status: "scheduled", ScheduledAt: &at,
	})
	require.NoError(t, err)

	res, err := sweeper.Sweep(ctx, env.clock.Now())
	require.NoError(t, err)
	assert.Equal(t, 0, res.Due)

	env.clock.Advance(2 * time.Second)
	res, err = sweeper.Sweep(ctx, env.clock.Now())
	require.NoError(t, err)
	assert.Equal(t, &SweepResult{Due: 1, Published: 1}, res)

	got, err := env.content.GetContent(ctx, 1, created.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ContentStatusPublished, got.Status)
	assert.Nil(t, got.ScheduledAt)
	assert.Equal(t, []string{model.EventContentCreated, model.EventContentPublished}, env.publisher.names())

	recent, err := env.activity.Recent(ctx, 1)
	require.NoError(t, err)
	require.NotEmpty(t, recent)
	assert.Equal(t, model.ActivityPublish, recent[0].Action)

	// 重复扫描无副作用
	res, err = sweeper.Sweep(ctx, env.clock.Now())
	require.NoError(t, err)
	assert.Equal(t, &SweepResult{}, res)
	assert.Len(t, env.publisher.names(), 2)
}

func TestSweepBoundaryAndOrdering(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	sweeper := newPublishService(env, env.content)
	now := env.clock.Now()

	onTime := now.Add(-time.Minute)
	late := now.Add(time.Minute)
	exact := now
	due1 := env.insertContent(t, &model.Content{UserID: 1, Status: model.ContentStatusScheduled, ScheduledAt: &onTime})
	due2 := env.insertContent(t, &model.Content{UserID: 2, Status: model.ContentStatusScheduled, ScheduledAt: &exact})
	notYet := env.insertContent(t, &model.Content{UserID: 1, Status: model.ContentStatusScheduled, ScheduledAt: &late})
	draft := env.insertContent(t, &model.Content{UserID: 1})

	res, err := sweeper.Sweep(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Due)
	assert.Equal(t, int64(2), res.Published)

	for id, want := range map[uint64]model.ContentStatus{
		due1.ID:   model.ContentStatusPublished,
		due2.ID:   model.ContentStatusPublished,
		notYet.ID: model.ContentStatusScheduled,
		draft.ID:  model.ContentStatusDraft,
	} {
		c, err := env.contentRepo.GetByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, want, c.Status, "content %d", id)
		assert.Equal(t, want == model.ContentStatusScheduled, c.ScheduledAt != nil)
	}
}

func TestSweepSkipsContentChangedConcurrently(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	now := env.clock.Now()

	past := now.Add(-time.Minute)
	c := env.insertContent(t, &model.Content{UserID: 1, Status: model.ContentStatusScheduled, ScheduledAt: &past})

	// 扫描到之后、发布之前被用户改回草稿
	require.NoError(t, env.db.Model(&model.Content{}).Where("id = ?", c.ID).Updates(map[string]any{
		"status":       model.ContentStatusDraft,
		"scheduled_at": nil,
	}).Error)
	published, err := env.content.PublishDue(ctx, c.ID, now)
	require.NoError(t, err)
	assert.False(t, published)
}

func TestSweepRetriesTransientFailures(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	flaky := &flakyContentRepo{ContentRepo: env.contentRepo}
	contentSvc := NewContentService(flaky, env.eventRepo, env.quota, env.activity, env.publisher, ContentOptions{Now: env.clock.Now})
	sweeper := NewPublishService(flaky, contentSvc, SchedulerOptions{
		Concurrency:  1,
		MaxAttempts:  3,
		RetryBackoff: time.Millisecond,
	})

	past := env.clock.Now().Add(-time.Minute)
	a := env.insertContent(t, &model.Content{UserID: 1, Status: model.ContentStatusScheduled, ScheduledAt: &past})

	flaky.failures.Store(2)
	res, err := sweeper.Sweep(ctx, env.clock.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.Published)

	got, err := env.contentRepo.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ContentStatusPublished, got.Status)
}

func TestSweepIsolatesFailures(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	flaky := &flakyContentRepo{ContentRepo: env.contentRepo}
	contentSvc := NewContentService(flaky, env.eventRepo, env.quota, env.activity, env.publisher, ContentOptions{Now: env.clock.Now})
	sweeper := NewPublishService(env.contentRepo, contentSvc, SchedulerOptions{
		Concurrency:  1,
		MaxAttempts:  2,
		RetryBackoff: time.Millisecond,
	})

	t1 := env.clock.Now().Add(-2 * time.Minute)
	t2 := env.clock.Now().Add(-time.Minute)
	first := env.insertContent(t, &model.Content{UserID: 1, Status: model.ContentStatusScheduled, ScheduledAt: &t1})
	second := env.insertContent(t, &model.Content{UserID: 1, Status: model.ContentStatusScheduled, ScheduledAt: &t2})

	// 第一条耗尽重试，第二条正常
	flaky.failures.Store(2)
	res, err := sweeper.Sweep(ctx, env.clock.Now())
	require.NoError(t, err)
	assert.Equal(t, &SweepResult{Due: 2, Published: 1, Failed: 1}, res)

	c1, err := env.contentRepo.GetByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ContentStatusScheduled, c1.Status)
	c2, err := env.contentRepo.GetByID(ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ContentStatusPublished, c2.Status)

	// 下一轮补发
	res, err = sweeper.Sweep(ctx, env.clock.Now())
	require.NoError(t, err)
	assert.Equal(t, &SweepResult{Due: 1, Published: 1}, res)
}

// stallingPublisher 发布类事件一直阻塞，直到 ctx 结束或 release 被关闭
type stallingPublisher struct {
	mu      sync.Mutex
	entered chan struct{}
	release chan struct{}
	once    sync.Once
	events  []string
}

func newStallingPublisher() *stallingPublisher {
	return &stallingPublisher{entered: make(chan struct{}), release: make(chan struct{})}
}

func (p *stallingPublisher) Publish(ctx context.Context, event *model.LifecycleEvent) {
	p.mu.Lock()
	p.events = append(p.events, event.Event)
	p.mu.Unlock()
	if event.Event != model.EventContentPublished {
		return
	}
	p.once.Do(func() { close(p.entered) })
	select {
	case <-ctx.Done():
	case <-p.release:
	}
}

func (p *stallingPublisher) count(name string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, e := range p.events {
		if e == name {
			n++
		}
	}
	return n
}

func seedDue(t *testing.T, env *testEnv, n int) []uint64 {
	ids := make([]uint64, 0, n)
	for i := 0; i < n; i++ {
		c := env.insertContent(t, &model.Content{
			UserID:      1,
			Status:      model.ContentStatusScheduled,
			ScheduledAt: ptr(baseTime.Add(-time.Minute)),
		})
		ids = append(ids, c.ID)
	}
	return ids
}

func TestSweepBoundedByItemTimeoutWhenPublisherStalls(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	publisher := newStallingPublisher()
	defer close(publisher.release)

	contentSvc := NewContentService(env.contentRepo, env.eventRepo, env.quota, env.activity, publisher, ContentOptions{Now: env.clock.Now})
	sweeper := NewPublishService(env.contentRepo, contentSvc, SchedulerOptions{
		Concurrency:  1,
		ItemTimeout:  100 * time.Millisecond,
		MaxAttempts:  1,
		RetryBackoff: time.Millisecond,
	})
	ids := seedDue(t, env, 2)

	start := time.Now()
	res, err := sweeper.Sweep(ctx, env.clock.Now())
	require.NoError(t, err)
	assert.Less(t, time.Since(start), time.Second)
	assert.Equal(t, &SweepResult{Due: 2, Published: 2}, res)
	assert.Equal(t, 2, publisher.count(model.EventContentPublished))

	for _, id := range ids {
		got, err := contentSvc.GetContent(ctx, 1, id)
		require.NoError(t, err)
		assert.Equal(t, model.ContentStatusPublished, got.Status)
	}
}

func TestEditNotBlockedByPendingPublishSideEffects(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	publisher := newStallingPublisher()

	contentSvc := NewContentService(env.contentRepo, env.eventRepo, env.quota, env.activity, publisher, ContentOptions{
		Now:               env.clock.Now,
		SideEffectTimeout: 10 * time.Second,
	})
	sweeper := NewPublishService(env.contentRepo, contentSvc, SchedulerOptions{
		Concurrency:  1,
		ItemTimeout:  10 * time.Second,
		MaxAttempts:  1,
		RetryBackoff: time.Millisecond,
	})
	ids := seedDue(t, env, 1)

	done := make(chan *SweepResult, 1)
	go func() {
		res, err := sweeper.Sweep(ctx, env.clock.Now())
		assert.NoError(t, err)
		done <- res
	}()
	<-publisher.entered

	// 发布的附带动作仍在进行，内容锁应已释放
	editCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	start := time.Now()
	updated, err := contentSvc.UpdateContent(editCtx, 1, ids[0], &dto.UpdateContentDTO{Title: ptr("edited")})
	require.NoError(t, err)
	assert.Less(t, time.Since(start), time.Second)
	assert.Equal(t, "edited", updated.Title)
	assert.Equal(t, model.ContentStatusPublished, updated.Status)

	close(publisher.release)
	assert.Equal(t, &SweepResult{Due: 1, Published: 1}, <-done)
}

func TestPublishDueGivesUpWhenContentLocked(t *testing.T) {
	env := newTestEnv(t)
	publisher := newStallingPublisher()
	defer close(publisher.release)

	contentSvc := NewContentService(env.contentRepo, env.eventRepo, env.quota, env.activity, publisher, ContentOptions{Now: env.clock.Now})
	ids := seedDue(t, env, 1)

	// 内容锁被占用时 PublishDue 按 ctx 放弃
	impl := contentSvc.(*contentServiceImpl)
	unlock := impl.contentLocks.Lock(ids[0])
	defer unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	published, err := contentSvc.PublishDue(ctx, ids[0], env.clock.Now())
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.False(t, published)
}
