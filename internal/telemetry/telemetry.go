// Package telemetry records tool-call outcomes. The dispatcher emits exactly
// one record per dispatch, whether the call ran, failed, or was blocked
// before execution.
package telemetry

import (
	"context"
	"log/slog"
	"time"
)

// Tag is a fixed key/value metric dimension attached to a record.
type Tag struct {
	Key   string
	Value string
}

// Sink receives tool-call results. Implementations must be safe for
// concurrent use; dispatches for different calls overlap.
type Sink interface {
	// ToolResult records one finished (or refused) tool call.
	ToolResult(toolName, callID, payload string, duration time.Duration, success bool, message string, tags []Tag)

	// WrapToolResult runs fn and records its outcome: the preview and
	// success flag on success, the error text on failure. The fn result is
	// passed through unchanged.
	WrapToolResult(ctx context.Context, toolName, callID, payload string, tags []Tag, fn func(context.Context) (string, bool, error)) (string, bool, error)
}

// SlogSink logs records through slog. The default sink when no metrics
// backend is wired in.
type SlogSink struct {
	Logger *slog.Logger
}

func NewSlogSink(logger *slog.Logger) *SlogSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogSink{Logger: logger}
}

func (s *SlogSink) ToolResult(toolName, callID, payload string, duration time.Duration, success bool, message string, tags []Tag) {
	attrs := []any{
		"tool", toolName,
		"call_id", callID,
		"payload", payload,
		"duration_ms", duration.Milliseconds(),
		"success", success,
		"message", message,
	}
	for _, tag := range tags {
		attrs = append(attrs, tag.Key, tag.Value)
	}
	if success {
		s.Logger.Info("tool result", attrs...)
	} else {
		s.Logger.Warn("tool result", attrs...)
	}
}

func (s *SlogSink) WrapToolResult(ctx context.Context, toolName, callID, payload string, tags []Tag, fn func(context.Context) (string, bool, error)) (string, bool, error) {
	start := time.Now()
	preview, success, err := fn(ctx)
	duration := time.Since(start)

	if err != nil {
		s.ToolResult(toolName, callID, payload, duration, false, err.Error(), tags)
	} else {
		s.ToolResult(toolName, callID, payload, duration, success, preview, tags)
	}
	return preview, success, err
}
