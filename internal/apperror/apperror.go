// Package apperror defines the error taxonomy shared by the sandbox, the
// curve service and the HTTP layer.
//
// Every failure is an *AppError wrapping one of the sentinel errors below,
// so callers can branch with errors.Is without parsing messages:
//
//	if errors.Is(err, apperror.ErrMultipleFunctionsFound) { ... }
package apperror

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("Validation Error")

	// Sandbox failures. Each one is terminal for the request that hit it.
	ErrAlreadyUsed            = errors.New("already used")
	ErrNoFunctionFound        = errors.New("no function found")
	ErrMultipleFunctionsFound = errors.New("multiple functions found")
	ErrZeroLengthPath         = errors.New("zero length path")
	ErrInvalidPath            = errors.New("invalid path")
	ErrExecution              = errors.New("execution failure")
	ErrTimedOut               = errors.New("timed out")
	ErrCancelled              = errors.New("cancelled")
)

// kinds maps each sentinel to the machine-readable name used on the wire.
var kinds = []struct {
	err  error
	kind string
}{
	{ErrAlreadyUsed, "AlreadyUsed"},
	{ErrNoFunctionFound, "NoFunctionFound"},
	{ErrMultipleFunctionsFound, "MultipleFunctionsFound"},
	{ErrZeroLengthPath, "ZeroLengthPath"},
	{ErrInvalidPath, "InvalidPath"},
	{ErrExecution, "ExecutionFailure"},
	{ErrTimedOut, "TimedOut"},
	{ErrCancelled, "Cancelled"},
	{ErrValidation, "ValidationError"},
	{ErrNotFound, "NotFound"},
}

type AppError struct {
	Err     error  // actual error
	Message string // Human-readable error message
	Field   string // Optional: field causing the error
	Stack   string // Optional: raw stack text of a script failure
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Kind returns the taxonomy name of err, or "" if err is not part of it.
func Kind(err error) string {
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}
	return ""
}

func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %s", resource, id),
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

// AlreadyUsed is returned by a sandbox instance for every request after its first.
func AlreadyUsed() *AppError {
	return &AppError{
		Err:     ErrAlreadyUsed,
		Message: "Worker already used",
	}
}

func NoFunctionFound() *AppError {
	return &AppError{
		Err:     ErrNoFunctionFound,
		Message: "No global function found.",
	}
}

// MultipleFunctionsFound lists every candidate in discovery order.
func MultipleFunctionsFound(names []string) *AppError {
	return &AppError{
		Err:     ErrMultipleFunctionsFound,
		Message: "Too many global functions. Found: " + strings.Join(names, ", "),
	}
}

func ZeroLengthPath() *AppError {
	return &AppError{
		Err:     ErrZeroLengthPath,
		Message: "Path is zero length",
	}
}

func InvalidPath(message string) *AppError {
	return &AppError{
		Err:     ErrInvalidPath,
		Message: message,
		Field:   "script",
	}
}

// Execution wraps an exception raised by user code. stack is the raw stack
// text, kept for the error classifier.
func Execution(message, stack string) *AppError {
	return &AppError{
		Err:     ErrExecution,
		Message: message,
		Stack:   stack,
	}
}

func TimedOut(message, stack string) *AppError {
	return &AppError{
		Err:     ErrTimedOut,
		Message: message,
		Stack:   stack,
	}
}

func Cancelled(cause error) *AppError {
	msg := "operation cancelled"
	if cause != nil {
		msg = fmt.Sprintf("operation cancelled: %v", cause)
	}
	return &AppError{
		Err:     ErrCancelled,
		Message: msg,
	}
}

// StackOf returns the raw stack text attached to err, if any.
func StackOf(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Stack
	}
	return ""
}

// FromKind rebuilds an error received over the wire. Unknown kinds map to
// ErrExecution.
func FromKind(kind, message string) *AppError {
	sentinel := ErrExecution
	for _, k := range kinds {
		if k.kind == kind {
			sentinel = k.err
			break
		}
	}
	return &AppError{
		Err:     sentinel,
		Message: message,
	}
}

// Kind returns the taxonomy name of e.
func (e *AppError) Kind() string {
	return Kind(e.Err)
}
