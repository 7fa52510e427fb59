package infrastructure

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	apperrors "soiagi/internal/errors"
)

// GenerateTraceID creates a new unique trace ID using UUID v4
func GenerateTraceID() string {
	return uuid.New().String()
}

// ContextWithTraceID creates a new context with a generated trace ID
func ContextWithTraceID(ctx context.Context) context.Context {
	return WithTraceID(ctx, GenerateTraceID())
}

// EnsureTraceID ensures the context has a trace ID, generating one if needed
func EnsureTraceID(ctx context.Context) context.Context {
	if GetTraceID(ctx) == "" {
		return ContextWithTraceID(ctx)
	}
	return ctx
}

// StepLogger tags logger with the pipeline component and the step it runs
func StepLogger(logger *slog.Logger, stepID string) *slog.Logger {
	return logger.With(slog.String("component", "pipeline"), slog.String("step", stepID))
}

// ErrorLogger adds err to logger. Application errors also carry their
// class (INPUT, SCHEMA, ...) so failed runs can be grouped by cause.
func ErrorLogger(logger *slog.Logger, err error) *slog.Logger {
	if err == nil {
		return logger
	}
	attrs := []any{slog.String("error", err.Error())}
	if class, ok := apperrors.TypeOf(err); ok {
		attrs = append(attrs, slog.String("error_class", string(class)))
	}
	return logger.With(attrs...)
}
