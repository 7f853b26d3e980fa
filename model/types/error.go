package types

import (
	"errors"
	"fmt"
)

// UsageError marks a programmer mistake such as wiring a duplicate successor
// or executing a flow as if it were a plain task. It is never retried and
// always surfaces to the caller immediately.
type UsageError struct {
	msg string
}

// Error implements the error interface.
func (e *UsageError) Error() string {
	return e.msg
}

// NewUsageError creates a new usage error.
func NewUsageError(format string, args ...interface{}) *UsageError {
	return &UsageError{msg: fmt.Sprintf(format, args...)}
}

// IsUsageError reports whether err is (or wraps) a UsageError.
func IsUsageError(err error) bool {
	var usage *UsageError
	return errors.As(err, &usage)
}

// MaxRetriesError is the terminal retry failure raised once a task has
// exhausted all allowed attempts. It carries the attempt count and wraps the
// last execution error.
type MaxRetriesError struct {
	Attempts int
	cause    error
}

// Error implements the error interface.
func (e *MaxRetriesError) Error() string {
	return fmt.Sprintf("max retries exceeded after %v attempt(s): %v", e.Attempts, e.cause)
}

// Unwrap returns the last execution error.
func (e *MaxRetriesError) Unwrap() error {
	return e.cause
}

// NewMaxRetriesError creates a new max retries error.
func NewMaxRetriesError(attempts int, cause error) *MaxRetriesError {
	return &MaxRetriesError{Attempts: attempts, cause: cause}
}

// IsMaxRetriesError reports whether err is (or wraps) a MaxRetriesError.
func IsMaxRetriesError(err error) bool {
	var maxRetries *MaxRetriesError
	return errors.As(err, &maxRetries)
}
