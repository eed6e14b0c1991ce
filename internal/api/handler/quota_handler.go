package handler

import (
	"Mediahub/internal/pkg/logger"
	"Mediahub/internal/pkg/response"
	"Mediahub/internal/service"

	"github.com/gin-gonic/gin"
)

type QuotaHandler struct {
	quotaSvc service.QuotaService
}

func NewQuotaHandler(quotaSvc service.QuotaService) *QuotaHandler {
	return &QuotaHandler{quotaSvc: quotaSvc}
}

// Plans 套餐目录，无需登录
func (s *QuotaHandler) Plans(c *gin.Context) {
	response.Success(c, s.quotaSvc.Plans())
}

func (s *QuotaHandler) Report(c *gin.Context) {
	report, err := s.quotaSvc.Report(c.Request.Context(), c.GetUint64(logger.UserIDKey))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, report)
}
