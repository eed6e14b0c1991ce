package handler

import (
	"Mediahub/internal/api/dto"
	"Mediahub/internal/pkg/logger"
	"Mediahub/internal/pkg/response"
	"Mediahub/internal/service"
	"strconv"

	"github.com/gin-gonic/gin"
)

type ContentHandler struct {
	contentSvc service.ContentService
}

func NewContentHandler(contentSvc service.ContentService) *ContentHandler {
	return &ContentHandler{
		contentSvc: contentSvc,
	}
}

func (s *ContentHandler) CreateContent(c *gin.Context) {
	userID := c.GetUint64(logger.UserIDKey)

	var req dto.CreateContentDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	content, err := s.contentSvc.CreateContent(c.Request.Context(), userID, &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, content)
}

func (s *ContentHandler) ListContents(c *gin.Context) {
	userID := c.GetUint64(logger.UserIDKey)

	var req dto.ContentListDTO
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BindError(c, err)
		return
	}

	contents, err := s.contentSvc.ListContents(c.Request.Context(), userID, &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, contents)
}

func (s *ContentHandler) GetContent(c *gin.Context) {
	userID := c.GetUint64(logger.UserIDKey)
	contentID, err := strconv.ParseUint(c.Param("content_id"), 10, 64)
	if err != nil {
		response.Error(c, err)
		return
	}

	content, err := s.contentSvc.GetContent(c.Request.Context(), userID, contentID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, content)
}

func (s *ContentHandler) UpdateContent(c *gin.Context) {
	userID := c.GetUint64(logger.UserIDKey)
	contentID, err := strconv.ParseUint(c.Param("content_id"), 10, 64)
	if err != nil {
		response.Error(c, err)
		return
	}

	var req dto.UpdateContentDTO
	if err = c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	content, err := s.contentSvc.UpdateContent(c.Request.Context(), userID, contentID, &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, content)
}

func (s *ContentHandler) DeleteContent(c *gin.Context) {
	userID := c.GetUint64(logger.UserIDKey)
	contentID, err := strconv.ParseUint(c.Param("content_id"), 10, 64)
	if err != nil {
		response.Error(c, err)
		return
	}

	if err = s.contentSvc.DeleteContent(c.Request.Context(), userID, contentID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}
