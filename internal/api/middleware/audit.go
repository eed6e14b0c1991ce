package middleware

import (
	"bytes"
	"io"
	log "log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

const maxAuditBody = 16384

// limitedBuffer 只保留前 maxAuditBody 字节
type limitedBuffer struct {
	buf       bytes.Buffer
	truncated bool
}

func (b *limitedBuffer) Write(p []byte) (int, error) {
	if room := maxAuditBody - b.buf.Len(); room < len(p) {
		b.truncated = true
		if room > 0 {
			b.buf.Write(p[:room])
		}
		return len(p), nil
	}
	return b.buf.Write(p)
}

type auditWriter struct {
	gin.ResponseWriter
	body *limitedBuffer
}

func (w *auditWriter) Write(p []byte) (int, error) {
	_, _ = w.body.Write(p)
	return w.ResponseWriter.Write(p)
}

func (w *auditWriter) Flush() {
	if flusher, ok := w.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

// AuditMiddleware 每个请求输出一条审计日志，包含 JSON 请求体与响应体。
// 需在 TraceMiddleware 之后注册；响应阶段使用鉴权后的 ctx，带上 user_id。
func AuditMiddleware(skipPaths ...string) gin.HandlerFunc {
	skip := map[string]struct{}{"/api/ping": {}}
	for _, p := range skipPaths {
		skip[p] = struct{}{}
	}

	return func(c *gin.Context) {
		if _, ok := skip[c.Request.URL.Path]; ok {
			c.Next()
			return
		}

		reqBody := &limitedBuffer{}
		if c.Request.Body != nil && isJSON(c.ContentType()) {
			// 边读边记，不改变下游看到的请求体
			c.Request.Body = struct {
				io.Reader
				io.Closer
			}{io.TeeReader(c.Request.Body, reqBody), c.Request.Body}
		}

		resBody := &limitedBuffer{}
		c.Writer = &auditWriter{ResponseWriter: c.Writer, body: resBody}
		start := time.Now()

		c.Next()

		log.InfoContext(c.Request.Context(), "audit",
			log.String("method", c.Request.Method),
			log.String("path", c.Request.URL.Path),
			log.String("query", c.Request.URL.RawQuery),
			log.String("req_body", reqBody.buf.String()),
			log.Bool("req_truncated", reqBody.truncated),
			log.Int("status", c.Writer.Status()),
			log.String("res_body", resBody.buf.String()),
			log.Bool("res_truncated", resBody.truncated),
			log.Duration("latency", time.Since(start)),
		)
	}
}

func isJSON(contentType string) bool {
	return strings.HasPrefix(contentType, "application/json")
}
