package kafka

import (
	"Mediahub/internal/api/config"
	"Mediahub/internal/model"
	"context"
	log "log/slog"
	"strconv"
	"sync"

	"github.com/IBM/sarama"
	"github.com/goccy/go-json"
)

// LifecyclePublisher 将内容状态变更异步写入 Kafka，发送结果只记日志。
// Publish 仅在投递队列满时阻塞，且最多等到 ctx 结束。
type LifecyclePublisher struct {
	producer sarama.AsyncProducer
	topic    string
	wg       sync.WaitGroup
}

func NewLifecyclePublisher(cfg config.KafkaConfig) (*LifecyclePublisher, error) {
	producer, err := sarama.NewAsyncProducer(cfg.Brokers, newSaramaConfig(cfg))
	if err != nil {
		return nil, err
	}
	return NewLifecyclePublisherWithProducer(producer, cfg.LifecycleTopic), nil
}

func NewLifecyclePublisherWithProducer(producer sarama.AsyncProducer, topic string) *LifecyclePublisher {
	s := &LifecyclePublisher{producer: producer, topic: topic}
	s.wg.Add(2)
	go s.drainSuccesses()
	go s.drainErrors()
	return s
}

func (s *LifecyclePublisher) Publish(ctx context.Context, event *model.LifecycleEvent) {
	value, err := json.Marshal(event)
	if err != nil {
		log.ErrorContext(ctx, "marshal lifecycle event error", "err", err)
		return
	}

	// 同一内容的事件落在同一分区，保证顺序
	msg := &sarama.ProducerMessage{
		Topic:    s.topic,
		Key:      sarama.StringEncoder(strconv.FormatUint(event.ContentID, 10)),
		Value:    sarama.ByteEncoder(value),
		Metadata: event,
	}
	select {
	case s.producer.Input() <- msg:
	case <-ctx.Done():
		log.WarnContext(ctx, "lifecycle event dropped",
			"event", event.Event, "content_id", event.ContentID, "err", ctx.Err())
	}
}

func (s *LifecyclePublisher) drainSuccesses() {
	defer s.wg.Done()
	for msg := range s.producer.Successes() {
		if event, ok := msg.Metadata.(*model.LifecycleEvent); ok {
			log.Debug("lifecycle event published",
				"event", event.Event, "content_id", event.ContentID, "partition", msg.Partition, "offset", msg.Offset)
		}
	}
}

func (s *LifecyclePublisher) drainErrors() {
	defer s.wg.Done()
	for perr := range s.producer.Errors() {
		attrs := []any{"err", perr.Err}
		if perr.Msg != nil {
			if event, ok := perr.Msg.Metadata.(*model.LifecycleEvent); ok {
				attrs = append(attrs, "event", event.Event, "content_id", event.ContentID)
			}
		}
		log.Error("publish lifecycle event error", attrs...)
	}
}

// Close 等待已入队的消息发送完毕，失败的消息已由 drainErrors 记录
func (s *LifecyclePublisher) Close() error {
	s.producer.AsyncClose()
	s.wg.Wait()
	return nil
}
