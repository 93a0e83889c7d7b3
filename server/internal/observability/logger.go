// Package observability provides structured logging and metrics for
// gateway request handling.
package observability

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
)

const (
	// LogFieldRequestID is the field name for request ID.
	LogFieldRequestID = "request_id"
	// LogFieldTool is the field name for the invoked tool.
	LogFieldTool = "tool"
	// LogFieldDuration is the field name for duration in milliseconds.
	LogFieldDuration = "duration_ms"
	// LogFieldEndpoint is the field name for the upstream endpoint.
	LogFieldEndpoint = "endpoint"
)

// NewLogger builds the process logger. Dev mode logs human-readable
// text at debug level; prod logs JSON at info level.
func NewLogger(dev bool) *slog.Logger {
	if dev {
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
}

// RequestContext carries logging state for a single tool invocation.
type RequestContext struct {
	RequestID string
	Tool      string
	StartTime time.Time
	Logger    *slog.Logger
}

// NewRequestContext creates a new request context with a generated request ID.
func NewRequestContext(logger *slog.Logger, tool string) *RequestContext {
	return &RequestContext{
		RequestID: uuid.New().String(),
		Tool:      tool,
		StartTime: time.Now(),
		Logger:    logger,
	}
}

// Info logs an info message.
func (r *RequestContext) Info(msg string, attrs ...slog.Attr) {
	r.Logger.LogAttrs(context.Background(), slog.LevelInfo, msg, r.withBase(attrs)...)
}

// Warn logs a warning message.
func (r *RequestContext) Warn(msg string, attrs ...slog.Attr) {
	r.Logger.LogAttrs(context.Background(), slog.LevelWarn, msg, r.withBase(attrs)...)
}

// Error logs an error message with the error.
func (r *RequestContext) Error(msg string, err error, attrs ...slog.Attr) {
	attrs = append(attrs, slog.String("error", err.Error()))
	r.Logger.LogAttrs(context.Background(), slog.LevelError, msg, r.withBase(attrs)...)
}

// DurationMs returns the elapsed time in milliseconds.
func (r *RequestContext) DurationMs() int64 {
	return time.Since(r.StartTime).Milliseconds()
}

func (r *RequestContext) withBase(attrs []slog.Attr) []slog.Attr {
	base := []slog.Attr{
		slog.String(LogFieldRequestID, r.RequestID),
		slog.String(LogFieldTool, r.Tool),
	}
	return append(base, attrs...)
}
