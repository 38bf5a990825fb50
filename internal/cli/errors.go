package cli

import (
	"errors"
	"fmt"
)

// ExitError represents a command failure with a specific exit code.
//
// Cobra RunE functions return NewExitError(code) after printing their own
// failure message, so the error propagates up to [RunWithConfig] without any
// command calling os.Exit directly. [IsExitError] extracts the code for
// [ExecuteResult]; only [Execute] terminates the process.
type ExitError struct {
	// Code is the exit code to return to the shell.
	// Convention: 0 = success, 1 = command failed, 2 = bad usage.
	Code int
}

// Error returns "exit status N", matching the os/exec format.
func (e *ExitError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}

// NewExitError creates an [ExitError] with the given exit code.
//
//	if err != nil {
//	    app.Printer.Failure("Submission failed: %v", err)
//	    return NewExitError(1)
//	}
func NewExitError(code int) *ExitError {
	return &ExitError{Code: code}
}

// IsExitError reports whether err is or wraps an [ExitError] and returns its
// code. It returns (0, false) for nil and for other errors.
func IsExitError(err error) (int, bool) {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code, true
	}
	return 0, false
}
