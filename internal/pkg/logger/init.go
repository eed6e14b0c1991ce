package logger

import (
	"Mediahub/internal/api/config"
	log "log/slog"
	"net"
	"os"
	"strings"
	"time"
)

// InitLogger 初始化全局 slog，配置了 logstash 时带 trace_id 的日志同时上报远端
func InitLogger(cfg config.LogConfig, ls config.LogstashConfig) {
	opts := &log.HandlerOptions{Level: ParseLevel(cfg.Level)}
	sinks := []Sink{{Handler: log.NewJSONHandler(os.Stdout, opts)}}

	if ls.Enable && ls.Address != "" {
		conn, err := net.DialTimeout("tcp", ls.Address, 3*time.Second)
		if err != nil {
			log.Warn("Failed to connect to Logstash, logging to stdout only", "addr", ls.Address, "err", err)
		} else {
			index := ls.Index
			if index == "" {
				index = "logstash-mediahub"
			}
			remote := log.NewJSONHandler(conn, opts).WithAttrs([]log.Attr{
				log.String("target_index", index),
				log.String("log_token", ls.Token),
			})
			sinks = append(sinks, Sink{Handler: remote, Accept: HasTraceID})
		}
	}

	log.SetDefault(log.New(&ContextHandler{NewFanoutHandler(sinks...)}))
}

// ParseLevel 将配置中的日志级别转换为 slog.Level，无法识别时使用 Info
func ParseLevel(level string) log.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return log.LevelDebug
	case "warn", "warning":
		return log.LevelWarn
	case "error":
		return log.LevelError
	default:
		return log.LevelInfo
	}
}
