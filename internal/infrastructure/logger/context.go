package logger

import (
	"context"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type contextKey string

const (
	loggerKey    contextKey = "logger"
	requestIDKey contextKey = "request_id"
	userIDKey    contextKey = "user_id"
	characterKey contextKey = "character"
)

// WithContext returns a new context carrying logger
func WithContext(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// FromContext retrieves the logger from context, or a no-op logger
func FromContext(ctx context.Context) *zap.Logger {
	if l, ok := ctx.Value(loggerKey).(*zap.Logger); ok {
		return l
	}
	return zap.NewNop()
}

// WithRequestID stores the HTTP request ID in ctx
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// WithActor stores the authenticated user and their main character name in ctx
func WithActor(ctx context.Context, userID int64, character string) context.Context {
	ctx = context.WithValue(ctx, userIDKey, userID)
	if character != "" {
		ctx = context.WithValue(ctx, characterKey, character)
	}
	return ctx
}

// GetRequestID returns the request ID stored in ctx, if any
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// GetUserID returns the user ID stored in ctx, or 0
func GetUserID(ctx context.Context) int64 {
	id, _ := ctx.Value(userIDKey).(int64)
	return id
}

// GetCharacter returns the character name stored in ctx, if any
func GetCharacter(ctx context.Context) string {
	name, _ := ctx.Value(characterKey).(string)
	return name
}

// L returns the context logger enriched with trace, request and actor fields.
//
//	logger.L(ctx).Info("request claimed", zap.Int64("request_id", id))
func L(ctx context.Context) *zap.Logger {
	return Enrich(ctx, FromContext(ctx))
}

// Enrich adds the correlation fields found in ctx to l
func Enrich(ctx context.Context, l *zap.Logger) *zap.Logger {
	if l == nil {
		l = zap.NewNop()
	}
	fields := make([]zap.Field, 0, 5)
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		fields = append(fields,
			zap.String("trace_id", sc.TraceID().String()),
			zap.String("span_id", sc.SpanID().String()),
		)
	}
	if id := GetRequestID(ctx); id != "" {
		fields = append(fields, zap.String("http_request_id", id))
	}
	if id := GetUserID(ctx); id != 0 {
		fields = append(fields, zap.Int64("user_id", id))
	}
	if name := GetCharacter(ctx); name != "" {
		fields = append(fields, zap.String("character", name))
	}
	if len(fields) == 0 {
		return l
	}
	return l.With(fields...)
}

// TraceID returns the trace ID of the active span, or ""
func TraceID(ctx context.Context) string {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return ""
	}
	return sc.TraceID().String()
}
