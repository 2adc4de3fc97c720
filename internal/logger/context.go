package logger

import (
	"context"
	"time"
)

// contextKey is a private type for context keys to avoid collisions
type contextKey struct{}

// logContextKey is the key for LogContext in context.Context
var logContextKey = contextKey{}

// LogContext holds request-scoped logging context
type LogContext struct {
	RequestID string    // API request id
	Operation string    // Logical operation (resolve, ingest, reconcile, ...)
	Volume    string    // Volume being operated on
	Field     string    // Asset field handle
	ClientIP  string    // Client IP address (without port)
	Actor     string    // Acting user id
	StartTime time.Time // For duration calculation
}

// WithContext returns a new context with the given LogContext
func WithContext(ctx context.Context, lc *LogContext) context.Context {
	return context.WithValue(ctx, logContextKey, lc)
}

// FromContext retrieves the LogContext from context, or nil if not present
func FromContext(ctx context.Context) *LogContext {
	if ctx == nil {
		return nil
	}
	lc, _ := ctx.Value(logContextKey).(*LogContext)
	return lc
}

// NewLogContext creates a new LogContext with the given client IP
func NewLogContext(clientIP string) *LogContext {
	return &LogContext{
		ClientIP:  clientIP,
		StartTime: time.Now(),
	}
}

// Clone creates a copy of the LogContext
func (lc *LogContext) Clone() *LogContext {
	if lc == nil {
		return nil
	}
	clone := *lc
	return &clone
}

// WithOperation returns a copy with the operation set
func (lc *LogContext) WithOperation(operation string) *LogContext {
	clone := lc.Clone()
	if clone != nil {
		clone.Operation = operation
	}
	return clone
}

// WithVolume returns a copy with the volume set
func (lc *LogContext) WithVolume(volume string) *LogContext {
	clone := lc.Clone()
	if clone != nil {
		clone.Volume = volume
	}
	return clone
}

// WithField returns a copy with the field handle set
func (lc *LogContext) WithField(field string) *LogContext {
	clone := lc.Clone()
	if clone != nil {
		clone.Field = field
	}
	return clone
}

// WithActor returns a copy with the acting user set
func (lc *LogContext) WithActor(actor string) *LogContext {
	clone := lc.Clone()
	if clone != nil {
		clone.Actor = actor
	}
	return clone
}

// WithRequestID returns a copy with the request id set
func (lc *LogContext) WithRequestID(requestID string) *LogContext {
	clone := lc.Clone()
	if clone != nil {
		clone.RequestID = requestID
	}
	return clone
}

// DurationMs returns the duration since StartTime in milliseconds
func (lc *LogContext) DurationMs() float64 {
	if lc == nil || lc.StartTime.IsZero() {
		return 0
	}
	return float64(time.Since(lc.StartTime).Microseconds()) / 1000.0
}
