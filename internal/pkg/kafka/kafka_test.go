package kafka

import (
	"Mediahub/internal/api/config"
	"Mediahub/internal/api/dto"
	"Mediahub/internal/model"
	"Mediahub/internal/service"
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSession struct {
	ctx     context.Context
	mu      sync.Mutex
	marked  []int64
	commits int
}

func (s *fakeSession) Claims() map[string][]int32               { return nil }
func (s *fakeSession) MemberID() string                         { return "member" }
func (s *fakeSession) GenerationID() int32                      { return 1 }
func (s *fakeSession) MarkOffset(string, int32, int64, string)  {}
func (s *fakeSession) ResetOffset(string, int32, int64, string) {}
func (s *fakeSession) Context() context.Context                 { return s.ctx }

func (s *fakeSession) Commit() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.commits++
}

func (s *fakeSession) MarkMessage(msg *sarama.ConsumerMessage, _ string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.marked = append(s.marked, msg.Offset)
}

type fakeClaim struct {
	messages chan *sarama.ConsumerMessage
}

func (c *fakeClaim) Topic() string                            { return "topic" }
func (c *fakeClaim) Partition() int32                         { return 0 }
func (c *fakeClaim) InitialOffset() int64                     { return 0 }
func (c *fakeClaim) HighWaterMarkOffset() int64               { return 0 }
func (c *fakeClaim) Messages() <-chan *sarama.ConsumerMessage { return c.messages }

func messages(n int) []*sarama.ConsumerMessage {
	res := make([]*sarama.ConsumerMessage, 0, n)
	for i := 0; i < n; i++ {
		res = append(res, &sarama.ConsumerMessage{Topic: "topic", Offset: int64(i)})
	}
	return res
}

var fastRunner = batchRunner{size: 2, wait: time.Second, minBackoff: time.Millisecond, maxBackoff: 4 * time.Millisecond}

func TestBatchRunnerProcessRetriesAndDrops(t *testing.T) {
	session := &fakeSession{ctx: context.Background()}
	var attempts sync.Map

	fastRunner.process(session, messages(3), func(_ context.Context, msg *sarama.ConsumerMessage) error {
		v, _ := attempts.LoadOrStore(msg.Offset, new(atomic.Int32))
		n := v.(*atomic.Int32).Add(1)
		switch msg.Offset {
		case 1:
			if n < 3 {
				return driver.ErrBadConn
			}
		case 2:
			return fmt.Errorf("%w: bad payload", ErrDropMessage)
		}
		return nil
	})

	v, _ := attempts.Load(int64(1))
	assert.Equal(t, int32(3), v.(*atomic.Int32).Load())
	v, _ = attempts.Load(int64(2))
	assert.Equal(t, int32(1), v.(*atomic.Int32).Load())
	assert.Equal(t, []int64{2}, session.marked)
	assert.Equal(t, 1, session.commits)
}

func TestBatchRunnerProcessStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	session := &fakeSession{ctx: ctx}

	done := make(chan struct{})
	go func() {
		fastRunner.process(session, messages(1), func(context.Context, *sarama.ConsumerMessage) error {
			return errors.New("store down")
		})
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("process did not return after cancel")
	}
	assert.Empty(t, session.marked)
}

func TestBatchRunnerDrainsClosedClaim(t *testing.T) {
	session := &fakeSession{ctx: context.Background()}
	claim := &fakeClaim{messages: make(chan *sarama.ConsumerMessage, 5)}
	for _, m := range messages(5) {
		claim.messages <- m
	}
	close(claim.messages)

	var handled atomic.Int32
	err := fastRunner.pull(session, claim, func(context.Context, *sarama.ConsumerMessage) error {
		handled.Add(1)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, int32(5), handled.Load())
	// 2 + 2 + 1
	assert.Equal(t, []int64{1, 3, 4}, session.marked)
	assert.Equal(t, 3, session.commits)
}

type fakeRecorder struct {
	err    error
	res    *dto.SessionResultDTO
	userID uint64
	req    *dto.SessionSummaryDTO
}

func (f *fakeRecorder) RecordSessionSummary(_ context.Context, userID uint64, req *dto.SessionSummaryDTO) (*dto.SessionResultDTO, error) {
	f.userID = userID
	f.req = req
	if f.err != nil {
		return nil, f.err
	}
	if f.res != nil {
		return f.res, nil
	}
	return &dto.SessionResultDTO{}, nil
}

func TestSessionHandlerLogic(t *testing.T) {
	msg := func(v string) *sarama.ConsumerMessage {
		return &sarama.ConsumerMessage{Topic: "sessions", Offset: 7, Value: []byte(v)}
	}
	ctx := context.Background()

	t.Run("valid", func(t *testing.T) {
		rec := &fakeRecorder{res: &dto.SessionResultDTO{Warning: "dangling"}}
		h := NewSessionHandler(rec)
		err := h.logic(ctx, msg(`{"user_id":9,"content_id":3,"session_key":"s-1","views":12,"revenue":"1.25","date":"2025-03-01"}`))
		require.NoError(t, err)
		assert.Equal(t, uint64(9), rec.userID)
		require.NotNil(t, rec.req.ContentID)
		assert.Equal(t, uint64(3), *rec.req.ContentID)
		assert.Equal(t, int64(12), rec.req.Views)
		assert.Equal(t, "1.25", rec.req.Revenue.String())
	})

	t.Run("bad json", func(t *testing.T) {
		err := NewSessionHandler(&fakeRecorder{}).logic(ctx, msg(`{"user_id":`))
		assert.ErrorIs(t, err, ErrDropMessage)
	})

	t.Run("missing user", func(t *testing.T) {
		err := NewSessionHandler(&fakeRecorder{}).logic(ctx, msg(`{"views":1}`))
		assert.ErrorIs(t, err, ErrDropMessage)
	})

	t.Run("validation failure is dropped", func(t *testing.T) {
		rec := &fakeRecorder{err: fmt.Errorf("%w: views", service.ErrValidation)}
		err := NewSessionHandler(rec).logic(ctx, msg(`{"user_id":1,"views":-1}`))
		assert.ErrorIs(t, err, ErrDropMessage)
	})

	t.Run("transient failure is retried", func(t *testing.T) {
		rec := &fakeRecorder{err: fmt.Errorf("%w: busy", service.ErrTransientStore)}
		err := NewSessionHandler(rec).logic(ctx, msg(`{"user_id":1,"views":1}`))
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrDropMessage)
	})
}

func TestLifecyclePublisher(t *testing.T) {
	producer := mocks.NewAsyncProducer(t, newSaramaConfig(config.KafkaConfig{}))
	publisher := NewLifecyclePublisherWithProducer(producer, "lifecycle")

	producer.ExpectInputWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		val, err := msg.Value.Encode()
		if err != nil {
			return err
		}
		var event model.LifecycleEvent
		if err := json.Unmarshal(val, &event); err != nil {
			return err
		}
		if event.Event != model.EventContentPublished || event.ContentID != 42 {
			return fmt.Errorf("unexpected event %+v", event)
		}
		key, _ := msg.Key.Encode()
		if string(key) != "42" {
			return fmt.Errorf("unexpected key %q", key)
		}
		return nil
	})
	producer.ExpectInputAndFail(sarama.ErrOutOfBrokers)

	event := &model.LifecycleEvent{
		Event:      model.EventContentPublished,
		ContentID:  42,
		UserID:     1,
		Status:     model.ContentStatusPublished,
		OccurredAt: time.Now(),
	}
	publisher.Publish(context.Background(), event)
	// 发送失败不影响调用方
	publisher.Publish(context.Background(), event)

	require.NoError(t, publisher.Close())
}

// stuckProducer 输入队列永远不被消费，模拟 broker 不可用时队列写满
type stuckProducer struct {
	sarama.AsyncProducer
	input     chan *sarama.ProducerMessage
	successes chan *sarama.ProducerMessage
	errors    chan *sarama.ProducerError
}

func newStuckProducer() *stuckProducer {
	return &stuckProducer{
		input:     make(chan *sarama.ProducerMessage),
		successes: make(chan *sarama.ProducerMessage),
		errors:    make(chan *sarama.ProducerError),
	}
}

func (p *stuckProducer) Input() chan<- *sarama.ProducerMessage     { return p.input }
func (p *stuckProducer) Successes() <-chan *sarama.ProducerMessage { return p.successes }
func (p *stuckProducer) Errors() <-chan *sarama.ProducerError      { return p.errors }
func (p *stuckProducer) AsyncClose() {
	close(p.successes)
	close(p.errors)
}

func TestLifecyclePublisherHonorsContext(t *testing.T) {
	publisher := NewLifecyclePublisherWithProducer(newStuckProducer(), "lifecycle")

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	start := time.Now()
	publisher.Publish(ctx, &model.LifecycleEvent{Event: model.EventContentPublished, ContentID: 1})
	assert.Less(t, time.Since(start), time.Second)

	require.NoError(t, publisher.Close())
}
