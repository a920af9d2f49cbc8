package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"time"

	"cdr.dev/slog/v3"

	"pulseboard/internal/errors"
)

// CommandError is a failed command. It prints the user facing message and
// unwraps to the underlying error so exit codes follow its kind.
type CommandError struct {
	Operation string
	Err       error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("failed to %s: %s", e.Operation, UserMessage(e.Err))
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// ErrorHandler provides centralized error handling for command handlers
type ErrorHandler struct {
	logger slog.Logger
}

// NewErrorHandler creates a new error handler
func NewErrorHandler() *ErrorHandler {
	return &ErrorHandler{}
}

// WithLogger makes Report log system failures to logger with their cause
func (eh *ErrorHandler) WithLogger(logger slog.Logger) *ErrorHandler {
	eh.logger = logger
	return eh
}

// Handle attaches the failed operation to err
func (eh *ErrorHandler) Handle(operation string, err error) error {
	if err == nil {
		return nil
	}
	return &CommandError{Operation: operation, Err: err}
}

// Report prints err for the user and returns the process exit code
func (eh *ErrorHandler) Report(w io.Writer, err error) int {
	if err == nil {
		return 0
	}
	var cmdErr *CommandError
	if stderrors.As(err, &cmdErr) {
		fmt.Fprintf(w, "Error: %s\n", cmdErr)
	} else {
		fmt.Fprintf(w, "Error: %s\n", UserMessage(err))
	}

	// Usage errors from cobra carry no kind and are not logged
	if errors.IsAppError(err) && errors.ShouldLogError(err) {
		eh.logger.Error(context.Background(), "command failed",
			slog.F("code", errors.GetErrorCode(err)),
			slog.Error(err),
		)
	}
	return errors.ExitCode(err)
}

// IsNotFoundError checks if an error is a not found error
func (eh *ErrorHandler) IsNotFoundError(err error) bool {
	return errors.IsErrorType(err, errors.ErrorTypeNotFound)
}

// UserMessage returns the message shown for err, with a retry hint for
// rejections the user can wait out
func UserMessage(err error) string {
	msg := errors.GetUserMessage(err)

	if d, ok := errors.MinimumDuration(err); ok {
		return fmt.Sprintf("%s; try again in %s", msg, formatSeconds(d.RemainingSeconds))
	}
	if appErr, ok := errors.AsAppError(err); ok && appErr.IsType(errors.ErrorTypeRateLimited) {
		if v, ok := appErr.GetContext("retryAfter"); ok {
			if retry, ok := v.(time.Duration); ok && retry > 0 {
				return fmt.Sprintf("%s; try again in %s", msg, formatSeconds(int64(retry.Round(time.Second)/time.Second)))
			}
		}
	}
	return msg
}
