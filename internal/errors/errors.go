package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Error codes for categorizing errors
const (
	ErrUsage       = "USAGE"
	ErrEnvironment = "ENVIRONMENT"
	ErrInput       = "INPUT"
	ErrDispatch    = "DISPATCH"
	ErrConfig      = "CONFIG"
	ErrInventory   = "INVENTORY"
)

// Error represents a structured error with code, message, suggestion, and optional cause.
// Rendered as:
//
//	✗ <What failed>
//
//	  <Why it failed - technical details>
//
//	  <How to fix it - actionable steps>
type Error struct {
	Code       string
	Message    string
	Suggestion string
	Cause      error
}

// New creates a new structured error with the given code, message, and suggestion.
func New(code, message, suggestion string) *Error {
	return &Error{
		Code:       code,
		Message:    message,
		Suggestion: suggestion,
	}
}

// WrapWithCode wraps an existing error with a specific code, message, and suggestion.
func WrapWithCode(err error, code, message, suggestion string) *Error {
	return &Error{
		Code:       code,
		Message:    message,
		Suggestion: suggestion,
		Cause:      err,
	}
}

// NewUsage creates a usage error. The CLI prints the command usage after it.
func NewUsage(message, suggestion string) *Error {
	return New(ErrUsage, message, suggestion)
}

// NewEnvironment creates an error for a missing or outdated external dependency.
func NewEnvironment(message, suggestion string) *Error {
	return New(ErrEnvironment, message, suggestion)
}

// NewInput creates an error for an invalid interactive answer.
func NewInput(message, suggestion string) *Error {
	return New(ErrInput, message, suggestion)
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder

	// First line: failure symbol + main message
	b.WriteString(fmt.Sprintf("✗ %s\n", e.Message))

	if e.Cause != nil {
		b.WriteString(fmt.Sprintf("\n  %s\n", e.Cause.Error()))
	}

	if e.Suggestion != "" {
		b.WriteString(fmt.Sprintf("\n  %s\n", e.Suggestion))
	}

	return b.String()
}

// Unwrap returns the underlying cause for use with errors.Is/errors.As.
func (e *Error) Unwrap() error {
	return e.Cause
}

// IsCode checks if an error is a structured Error with the given code.
func IsCode(err error, code string) bool {
	if err == nil {
		return false
	}
	var structured *Error
	if errors.As(err, &structured) {
		return structured.Code == code
	}
	return false
}

// ExitError carries the exit status of an external process that ran to
// completion but failed. The CLI exits with Code without printing anything,
// since the child already reported on the shared terminal.
type ExitError struct {
	Code int
}

// NewExitError creates an ExitError for the given status.
func NewExitError(code int) *ExitError {
	return &ExitError{Code: code}
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit code %d", e.Code)
}

// GetExitCode extracts the status from an ExitError anywhere in the chain.
func GetExitCode(err error) (int, bool) {
	if err == nil {
		return 0, false
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code, true
	}
	return 0, false
}

// ExitCodeFor maps an error to the process exit status.
// nil is 0, a bare ExitError keeps its own status, everything else is 1.
// A structured Error is always 1, even when it wraps an ExitError.
func ExitCodeFor(err error) int {
	if err == nil {
		return 0
	}
	var structured *Error
	if errors.As(err, &structured) {
		return 1
	}
	if code, ok := GetExitCode(err); ok {
		return code
	}
	return 1
}
