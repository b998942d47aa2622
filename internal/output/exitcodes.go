package output

import "errors"

// Process exit codes.
const (
	ExitSuccess     = 0
	ExitUserError   = 1
	ExitSystemError = 2
	ExitConflict    = 3
)

// ExitError is an error that carries an exit code for the CLI.
type ExitError struct {
	Code    int
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *ExitError) Error() string {
	return e.Message
}

// Unwrap returns the underlying cause for errors.Is/errors.As support.
func (e *ExitError) Unwrap() error {
	return e.Cause
}

// NewUserError creates an error for bad input (exit code 1).
func NewUserError(message string) *ExitError {
	return &ExitError{Code: ExitUserError, Message: message}
}

// NewUserErrorWithCause creates a user error wrapping cause.
func NewUserErrorWithCause(message string, cause error) *ExitError {
	return &ExitError{Code: ExitUserError, Message: message, Cause: cause}
}

// NewSystemErrorWithCause creates an error for environment failures
// (exit code 2) wrapping cause.
func NewSystemErrorWithCause(message string, cause error) *ExitError {
	return &ExitError{Code: ExitSystemError, Message: message, Cause: cause}
}

// NewConflictErrorWithCause creates a conflict error (exit code 3) wrapping cause.
func NewConflictErrorWithCause(message string, cause error) *ExitError {
	return &ExitError{Code: ExitConflict, Message: message, Cause: cause}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitSuccess for nil, ExitUserError for untyped errors.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitUserError
}
