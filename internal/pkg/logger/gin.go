package logger

import (
	log "log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// SetupGin 注册访问日志和 panic 恢复，均经由全局 slog 输出以带上 trace_id / user_id
func SetupGin(r *gin.Engine) {
	r.Use(accessLog("/api/ping"))
	r.Use(gin.CustomRecovery(func(c *gin.Context, recovered any) {
		log.ErrorContext(c.Request.Context(), "panic recovered",
			"method", c.Request.Method, "path", c.Request.URL.Path, "panic", recovered)
		c.AbortWithStatusJSON(http.StatusOK, gin.H{"code": 500, "message": "服务器内部错误", "data": nil})
	}))
}

func accessLog(skipPaths ...string) gin.HandlerFunc {
	skip := make(map[string]struct{}, len(skipPaths))
	for _, p := range skipPaths {
		skip[p] = struct{}{}
	}

	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if _, ok := skip[path]; ok {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		level := log.LevelInfo
		if len(c.Errors) > 0 || c.Writer.Status() >= http.StatusInternalServerError {
			level = log.LevelError
		}
		// 鉴权中间件替换过 Request，这里取到的 ctx 已带 user_id
		log.Log(c.Request.Context(), level, "GIN_ACCESS",
			"method", c.Request.Method,
			"path", path,
			"route", c.FullPath(),
			"status", c.Writer.Status(),
			"latency", time.Since(start),
			"client_ip", c.ClientIP(),
		)
	}
}
