package kafka

import (
	"Mediahub/internal/api/config"
	"context"
	log "log/slog"

	"github.com/IBM/sarama"
)

// ConsumerManager 管理所有 Kafka 消费者
type ConsumerManager struct {
	sessionConsumer sarama.ConsumerGroup
	sessionHandler  sarama.ConsumerGroupHandler
}

// NewConsumerManager 构造函数
func NewConsumerManager(cfg *config.Config, recorder SessionRecorder) (*ConsumerManager, error) {
	saramaCfg := newSaramaConfig(cfg.Kafka)

	sessionConsumer, err := sarama.NewConsumerGroup(cfg.Kafka.Brokers, cfg.KafkaSessionConsumer.GroupID, saramaCfg)
	if err != nil {
		return nil, err
	}

	return &ConsumerManager{
		sessionConsumer: sessionConsumer,
		sessionHandler:  NewSessionHandler(recorder),
	}, nil
}

// Start 启动所有消费者，阻塞直到 ctx 结束
func (m *ConsumerManager) Start(ctx context.Context, cfg *config.Config) error {
	go func() {
		for err := range m.sessionConsumer.Errors() {
			log.Error("session consumer error", "err", err)
		}
	}()

	go func() {
		topic := cfg.KafkaSessionConsumer.Topic
		log.Info("Session summary consumer started", "topic", topic)
		for {
			if err := m.sessionConsumer.Consume(ctx, []string{topic}, m.sessionHandler); err != nil {
				log.Error("Error from consumer", "err", err)
			}
			if ctx.Err() != nil {
				return
			}
		}
	}()

	<-ctx.Done()
	log.Info("Kafka Manager shutting down...")

	if err := m.sessionConsumer.Close(); err != nil {
		log.Error("Failed to close session consumer", "err", err)
	}
	return nil
}
