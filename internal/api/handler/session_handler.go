package handler

import (
	"Mediahub/internal/api/dto"
	"Mediahub/internal/pkg/logger"
	"Mediahub/internal/pkg/response"
	"Mediahub/internal/service"

	"github.com/gin-gonic/gin"
)

// SessionHandler 会话汇总的同步上报入口，异步上报走 Kafka
type SessionHandler struct {
	contentSvc service.ContentService
}

func NewSessionHandler(contentSvc service.ContentService) *SessionHandler {
	return &SessionHandler{contentSvc: contentSvc}
}

func (s *SessionHandler) RecordSession(c *gin.Context) {
	userID := c.GetUint64(logger.UserIDKey)

	var req dto.SessionSummaryDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}
	// 以 token 中的身份为准
	req.UserID = userID

	res, err := s.contentSvc.RecordSessionSummary(c.Request.Context(), userID, &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}
