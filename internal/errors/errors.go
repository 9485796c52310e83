package errors

import (
	"errors"
	"fmt"
	"os"

	"soberly/internal/logger"
)

// ErrNotTracking is returned by operations that require a sobriety period to
// have been started while start_date is still unset. Derived-value getters do
// not return it; they default to zero values so display code stays defined.
var ErrNotTracking = errors.New("sobriety tracking has not been started, run 'soberly init' first")

// StoreIOError wraps an underlying persistence failure. The engine performs no
// implicit retries; callers decide whether to retry the user-initiated action.
type StoreIOError struct {
	Op  string
	Err error
}

func (e *StoreIOError) Error() string {
	return fmt.Sprintf("storage %s failed: %v", e.Op, e.Err)
}

func (e *StoreIOError) Unwrap() error { return e.Err }

// WrapStore wraps err as a StoreIOError, or returns nil if err is nil.
func WrapStore(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StoreIOError{Op: op, Err: err}
}

// Format formats an error message with a consistent "Error: " prefix
func Format(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Error: %v", err)
}

// Fatal logs an error and exits the program with exit code 1
func Fatal(err error) {
	if err != nil {
		logger.Error("Command execution failed", "error", err)
		fmt.Fprintf(os.Stderr, "%s\n", Format(err))
		os.Exit(1)
	}
}
