package kafka

import (
	"Mediahub/internal/api/dto"
	"Mediahub/internal/pkg/logger"
	"Mediahub/internal/service"
	"context"
	"fmt"
	log "log/slog"
	"strconv"

	"github.com/IBM/sarama"
	"github.com/goccy/go-json"
)

// SessionRecorder 会话汇总的写入方
type SessionRecorder interface {
	RecordSessionSummary(ctx context.Context, userID uint64, req *dto.SessionSummaryDTO) (*dto.SessionResultDTO, error)
}

// SessionHandler 消费直播 / 视频服务上报的会话汇总
type SessionHandler struct {
	recorder SessionRecorder
}

func NewSessionHandler(recorder SessionRecorder) *SessionHandler {
	return &SessionHandler{recorder: recorder}
}

func (s *SessionHandler) Setup(sarama.ConsumerGroupSession) error {
	log.Info("session summary consumer setup")
	return nil
}

func (s *SessionHandler) Cleanup(sarama.ConsumerGroupSession) error {
	log.Info("session summary consumer cleanup")
	return nil
}

func (s *SessionHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	log.Info("session summary consume claim", "topic", claim.Topic(), "partition", claim.Partition())
	if err := defaultBatchRunner.pull(session, claim, s.logic); err != nil {
		log.Error("session summary process batch error", "err", err)
		return err
	}
	return nil
}

func (s *SessionHandler) logic(ctx context.Context, msg *sarama.ConsumerMessage) error {
	ctx = logger.WithTraceID(ctx, "kafka-"+msg.Topic+"-"+strconv.FormatInt(msg.Offset, 10))

	var req dto.SessionSummaryDTO
	if err := json.Unmarshal(msg.Value, &req); err != nil {
		return fmt.Errorf("%w: unmarshal session summary: %w", ErrDropMessage, err)
	}
	if req.UserID == 0 {
		return fmt.Errorf("%w: session summary without user_id", ErrDropMessage)
	}

	res, err := s.recorder.RecordSessionSummary(ctx, req.UserID, &req)
	if err != nil {
		if service.IsTerminal(err) {
			return fmt.Errorf("%w: %w", ErrDropMessage, err)
		}
		return err
	}
	if res.Warning != "" {
		log.WarnContext(ctx, "session summary recorded with warning", "user_id", req.UserID, "warning", res.Warning)
	}
	return nil
}
