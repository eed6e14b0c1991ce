package logger

import (
	"context"
	"errors"
	log "log/slog"
)

// Sink 一个输出目标，Accept 为空表示全部接收
type Sink struct {
	Handler log.Handler
	Accept  func(r log.Record) bool
}

// FanoutHandler 将日志按各 Sink 的过滤条件分发
type FanoutHandler struct {
	sinks []Sink
}

func NewFanoutHandler(sinks ...Sink) *FanoutHandler {
	return &FanoutHandler{sinks: sinks}
}

func (s *FanoutHandler) Enabled(ctx context.Context, level log.Level) bool {
	for _, sink := range s.sinks {
		if sink.Handler.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

// Handle 某个目标写失败不影响其他目标，错误合并后返回
func (s *FanoutHandler) Handle(ctx context.Context, r log.Record) error {
	var errs []error
	for _, sink := range s.sinks {
		if !sink.Handler.Enabled(ctx, r.Level) {
			continue
		}
		if sink.Accept != nil && !sink.Accept(r) {
			continue
		}
		if err := sink.Handler.Handle(ctx, r.Clone()); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (s *FanoutHandler) WithAttrs(attrs []log.Attr) log.Handler {
	return s.derive(func(h log.Handler) log.Handler { return h.WithAttrs(attrs) })
}

func (s *FanoutHandler) WithGroup(name string) log.Handler {
	return s.derive(func(h log.Handler) log.Handler { return h.WithGroup(name) })
}

func (s *FanoutHandler) derive(fn func(log.Handler) log.Handler) *FanoutHandler {
	sinks := make([]Sink, len(s.sinks))
	for i, sink := range s.sinks {
		sinks[i] = Sink{Handler: fn(sink.Handler), Accept: sink.Accept}
	}
	return &FanoutHandler{sinks: sinks}
}

// HasTraceID 只有请求链路、定时任务和消费者的日志带 trace_id，远端只收这些
func HasTraceID(r log.Record) bool {
	found := false
	r.Attrs(func(a log.Attr) bool {
		if a.Key == TraceIDKey && a.Value.String() != "" {
			found = true
			return false
		}
		return true
	})
	return found
}
