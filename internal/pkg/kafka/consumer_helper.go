package kafka

import (
	"context"
	"errors"
	log "log/slog"
	"time"

	"github.com/IBM/sarama"
	"golang.org/x/sync/errgroup"
)

// ErrDropMessage 消息本身无效，重试没有意义，记录后跳过
var ErrDropMessage = errors.New("drop message")

type LogicFunc func(ctx context.Context, msg *sarama.ConsumerMessage) error

// batchRunner 攒批消费：满 size 条或等待 wait 后处理一批，整批结束才提交位点
type batchRunner struct {
	size       int
	wait       time.Duration
	minBackoff time.Duration
	maxBackoff time.Duration
}

var defaultBatchRunner = batchRunner{
	size:       32,
	wait:       time.Second,
	minBackoff: 100 * time.Millisecond,
	maxBackoff: 5 * time.Second,
}

// pull 循环读取 claim，直到 claim 关闭或会话结束
func (r batchRunner) pull(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim, logic LogicFunc) error {
	batch := make([]*sarama.ConsumerMessage, 0, r.size)
	timer := time.NewTimer(r.wait)
	defer timer.Stop()

	flush := func() {
		if len(batch) == 0 {
			return
		}
		r.process(session, batch, logic)
		batch = make([]*sarama.ConsumerMessage, 0, r.size)
	}

	for {
		select {
		case msg, ok := <-claim.Messages():
			if !ok {
				flush()
				return nil
			}
			batch = append(batch, msg)
			if len(batch) < r.size {
				continue
			}
			flush()
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(r.wait)
		case <-timer.C:
			flush()
			timer.Reset(r.wait)
		case <-session.Context().Done():
			return nil
		}
	}
}

// process 并发处理一批消息。会话已结束时不提交，交由下一个持有者重新消费
func (r batchRunner) process(session sarama.ConsumerGroupSession, messages []*sarama.ConsumerMessage, logic LogicFunc) {
	ctx := session.Context()
	var g errgroup.Group
	for _, msg := range messages {
		g.Go(func() error {
			r.handle(ctx, msg, logic)
			return nil
		})
	}
	_ = g.Wait()

	if len(messages) == 0 || ctx.Err() != nil {
		return
	}
	session.MarkMessage(messages[len(messages)-1], "")
	// 关闭了自动提交
	session.Commit()
}

// handle 单条消息：成功或被丢弃即返回，其余错误按指数退避重试
func (r batchRunner) handle(ctx context.Context, msg *sarama.ConsumerMessage, logic LogicFunc) {
	backoff := r.minBackoff
	for attempt := 1; ; attempt++ {
		err := logic(ctx, msg)
		if err == nil {
			return
		}
		if errors.Is(err, ErrDropMessage) {
			log.Warn("drop invalid message",
				"topic", msg.Topic, "partition", msg.Partition, "offset", msg.Offset, "err", err)
			return
		}

		log.Error("process message error",
			"topic", msg.Topic, "offset", msg.Offset, "attempt", attempt, "retry_in", backoff, "err", err)
		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}
		backoff = min(backoff*2, r.maxBackoff)
	}
}
