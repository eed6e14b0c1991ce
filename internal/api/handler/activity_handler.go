package handler

import (
	"Mediahub/internal/pkg/logger"
	"Mediahub/internal/pkg/response"
	"Mediahub/internal/service"

	"github.com/gin-gonic/gin"
)

type ActivityHandler struct {
	activitySvc service.ActivityService
}

func NewActivityHandler(activitySvc service.ActivityService) *ActivityHandler {
	return &ActivityHandler{activitySvc: activitySvc}
}

func (s *ActivityHandler) Recent(c *gin.Context) {
	activities, err := s.activitySvc.Recent(c.Request.Context(), c.GetUint64(logger.UserIDKey))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, activities)
}
