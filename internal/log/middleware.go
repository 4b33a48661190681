package log

import (
	"context"
	"log/slog"
	"net/http"
)

type ContextKey string

const LoggerContextKey ContextKey = "logger"

// NewContext returns ctx carrying logger for FromContext.
func NewContext(ctx context.Context, logger *Logger) context.Context {
	return context.WithValue(ctx, LoggerContextKey, logger)
}

// FromContext returns the logger stored by NewContext, or one over the slog
// default when there is none.
func FromContext(ctx context.Context) *Logger {
	if logger, ok := ctx.Value(LoggerContextKey).(*Logger); ok {
		return logger
	}
	return &Logger{
		Logger:    slog.Default(),
		component: "unknown",
	}
}

// Middleware stores logger in every request context.
func Middleware(logger *Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(NewContext(r.Context(), logger)))
		})
	}
}

// RequestIDMiddleware tags the context logger with the request ID found by
// extractRequestID. It must run inside Middleware.
func RequestIDMiddleware(extractRequestID func(*http.Request) string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if requestID := extractRequestID(r); requestID != "" {
				logger := FromContext(r.Context()).With(FieldRequestID, requestID)
				r = r.WithContext(NewContext(r.Context(), logger))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// StructuredLogger writes the domain events logged in more than one place
// with a fixed field set.
type StructuredLogger struct {
	logger *Logger
}

func NewStructuredLogger(logger *Logger) *StructuredLogger {
	return &StructuredLogger{
		logger: logger,
	}
}

// LogRecordCreated logs a stored expense or income.
func (sl *StructuredLogger) LogRecordCreated(ctx context.Context, kind, category string, amountCents int64, date, ref string) {
	fields := NewFields().
		WithRecord(kind, category, amountCents, date).
		WithOperation(OpCreate).
		ToSlice()
	fields = append(fields, FieldRef, ref)

	sl.logger.InfoContext(ctx, "Record created", fields...)
}

// LogError logs err at error level under operation, merged with fields.
func (sl *StructuredLogger) LogError(ctx context.Context, msg string, err error, operation string, fields LogFields) {
	if fields == nil {
		fields = NewFields()
	}
	allFields := fields.
		WithError(err).
		WithOperation(operation)

	sl.logger.ErrorContext(ctx, msg, allFields.ToSlice()...)
}
