package logger

import (
	"context"
	"errors"
	"fmt"
	log "log/slog"
	"strings"
	"time"

	gormlogger "gorm.io/gorm/logger"
	"gorm.io/gorm/utils"
)

// GormLogger 把 gorm 的日志接到全局 slog 上，SQL 日志带 ctx 中的 trace_id
type GormLogger struct {
	level         gormlogger.LogLevel
	dialect       string
	slowThreshold time.Duration
}

func NewGormLogger(dialect string) *GormLogger {
	return &GormLogger{
		level:         gormlogger.Warn,
		dialect:       dialect,
		slowThreshold: 200 * time.Millisecond,
	}
}

func (l *GormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	clone := *l
	clone.level = level
	return &clone
}

// WithSlowThreshold 调整慢查询阈值
func (l *GormLogger) WithSlowThreshold(d time.Duration) *GormLogger {
	clone := *l
	clone.slowThreshold = d
	return &clone
}

func (l *GormLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	l.printf(ctx, gormlogger.Info, log.LevelInfo, msg, data)
}

func (l *GormLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	l.printf(ctx, gormlogger.Warn, log.LevelWarn, msg, data)
}

func (l *GormLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	l.printf(ctx, gormlogger.Error, log.LevelError, msg, data)
}

func (l *GormLogger) printf(ctx context.Context, need gormlogger.LogLevel, level log.Level, msg string, data []interface{}) {
	if l.level < need {
		return
	}
	log.Log(ctx, level, fmt.Sprintf(msg, data...), "source", utils.FileWithLineNum())
}

func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= gormlogger.Silent {
		return
	}

	elapsed := time.Since(begin)
	var (
		level log.Level
		msg   string
	)
	switch {
	case err != nil && !errors.Is(err, gormlogger.ErrRecordNotFound) && l.level >= gormlogger.Error:
		level, msg = log.LevelError, "sql error"
	case l.slowThreshold > 0 && elapsed > l.slowThreshold && l.level >= gormlogger.Warn:
		level, msg = log.LevelWarn, "slow sql"
	case l.level >= gormlogger.Info:
		level, msg = log.LevelInfo, "sql"
	default:
		return
	}

	sql, rows := fc()
	attrs := []any{
		"dialect", l.dialect,
		"op", sqlVerb(sql),
		"sql", sql,
		"rows", rows,
		"latency", elapsed,
		"source", utils.FileWithLineNum(),
	}
	if err != nil {
		attrs = append(attrs, "err", err)
	}
	log.Log(ctx, level, msg, attrs...)
}

// sqlVerb SQL 的首个关键字，如 SELECT / UPDATE
func sqlVerb(sql string) string {
	sql = strings.TrimSpace(sql)
	if i := strings.IndexAny(sql, " \n\t"); i > 0 {
		return strings.ToUpper(sql[:i])
	}
	return strings.ToUpper(sql)
}
