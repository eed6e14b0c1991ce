package api

import (
	"Mediahub/internal/api/middleware"
	"Mediahub/internal/pkg/logger"
	"net/http"

	"github.com/gin-gonic/gin"
)

func SetupRouter(group *HandlersGroup) *gin.Engine {
	r := gin.New()
	_ = r.SetTrustedProxies([]string{"localhost"})

	// TraceId & Logger & CORS
	r.Use(middleware.TraceMiddleware())
	r.Use(middleware.AuditMiddleware())
	r.Use(middleware.CORSMiddleware())
	logger.SetupGin(r)

	apiGroup := r.Group("/api")
	{
		apiGroup.GET("/ping", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"code":    200,
				"message": "pong",
				"data":    nil,
			})
		})
		apiGroup.GET("/plans", group.QuotaHandler.Plans)

		authGroup := apiGroup.Group("")
		authGroup.Use(middleware.AuthMiddleware())

		contentGroup := authGroup.Group("/contents")
		{
			contentGroup.POST("", group.ContentHandler.CreateContent)
			contentGroup.GET("", group.ContentHandler.ListContents)
			contentGroup.GET("/:content_id", group.ContentHandler.GetContent)
			contentGroup.PUT("/:content_id", group.ContentHandler.UpdateContent)
			contentGroup.DELETE("/:content_id", group.ContentHandler.DeleteContent)
		}

		authGroup.POST("/sessions", group.SessionHandler.RecordSession)

		dashboardGroup := authGroup.Group("/dashboard")
		{
			dashboardGroup.GET("/overview", group.DashboardHandler.Overview)
			dashboardGroup.GET("/stats", group.DashboardHandler.Stats)
		}

		authGroup.GET("/quota", group.QuotaHandler.Report)
		authGroup.GET("/activities", group.ActivityHandler.Recent)
	}

	return r
}
