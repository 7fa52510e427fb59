package errors

import (
	"context"
	"errors"
	"log/slog"
)

// Process exit codes reported by the CLI
const (
	ExitOK        = 0
	ExitFailure   = 1
	ExitUsage     = 2
	ExitInput     = 3
	ExitSchema    = 4
	ExitStorage   = 5
	ExitCancelled = 130
)

// ErrorHandler logs fatal run errors and maps them to exit codes
type ErrorHandler struct {
	logger *slog.Logger
}

// NewErrorHandler creates a new error handler
func NewErrorHandler(logger *slog.Logger) *ErrorHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ErrorHandler{
		logger: logger.With(slog.String("component", "error_handler")),
	}
}

// Handle logs err with its context and returns the exit code for it
func (h *ErrorHandler) Handle(ctx context.Context, err error) int {
	if err == nil {
		return ExitOK
	}

	attrs := []any{slog.String("error", err.Error())}
	var appErr *AppError
	if errors.As(err, &appErr) {
		attrs = append(attrs, slog.String("error_type", string(appErr.Type)))
		for k, v := range appErr.Context {
			attrs = append(attrs, slog.Any(k, v))
		}
	}
	h.logger.ErrorContext(ctx, "run failed", attrs...)

	return ExitCode(err)
}

// ExitCode maps an error to a process exit code
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return ExitCancelled
	}

	t, ok := TypeOf(err)
	if !ok {
		return ExitFailure
	}
	switch t {
	case ErrTypeInput, ErrTypeNotFound:
		return ExitInput
	case ErrTypeSchema, ErrTypeParsing:
		return ExitSchema
	case ErrTypeStorage:
		return ExitStorage
	case ErrTypeConfig, ErrTypeValidation:
		return ExitUsage
	default:
		return ExitFailure
	}
}
