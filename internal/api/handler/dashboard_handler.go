package handler

import (
	"Mediahub/internal/pkg/logger"
	"Mediahub/internal/pkg/response"
	"Mediahub/internal/service"
	"strconv"

	"github.com/gin-gonic/gin"
)

type DashboardHandler struct {
	analyticsSvc service.AnalyticsService
}

func NewDashboardHandler(analyticsSvc service.AnalyticsService) *DashboardHandler {
	return &DashboardHandler{analyticsSvc: analyticsSvc}
}

func (s *DashboardHandler) Overview(c *gin.Context) {
	userID := c.GetUint64(logger.UserIDKey)

	// 非法 days 交给 service 回落到默认窗口
	days, _ := strconv.Atoi(c.Query("days"))

	overview, err := s.analyticsSvc.Overview(c.Request.Context(), userID, days)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, overview)
}

func (s *DashboardHandler) Stats(c *gin.Context) {
	stats, err := s.analyticsSvc.Stats(c.Request.Context(), c.GetUint64(logger.UserIDKey))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, stats)
}
