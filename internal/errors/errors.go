package errors

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
)

// Error types for different categories of failures
type ErrorType string

const (
	ErrorTypeValidation    ErrorType = "validation"
	ErrorTypeComputation   ErrorType = "computation"
	ErrorTypeResource      ErrorType = "resource"
	ErrorTypeConfiguration ErrorType = "configuration"
	ErrorTypeIO            ErrorType = "io"
)

// Sentinel kinds. Every StructuredError of the matching type unwraps to one of
// these so callers can use errors.Is without knowing the concrete type.
var (
	// ErrInvalidInput reports a violated precondition: empty inputs, a query
	// longer than the series, non-finite samples or out of range options.
	ErrInvalidInput = errors.New("invalid input")

	// ErrResourceExhausted reports that scratch memory for a computation could
	// not be obtained. It is not retried.
	ErrResourceExhausted = errors.New("resource exhausted")
)

// StructuredError provides rich error context
type StructuredError struct {
	Type      ErrorType
	Operation string
	Message   string
	Cause     error
	Context   map[string]interface{}
	Stack     []uintptr
}

// Error implements the error interface
func (e *StructuredError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %s: %v", e.Type, e.Operation, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Type, e.Operation, e.Message)
}

// Unwrap returns the underlying cause
func (e *StructuredError) Unwrap() error {
	return e.Cause
}

// New creates a new structured error
func New(errType ErrorType, operation, message string) *StructuredError {
	return &StructuredError{
		Type:      errType,
		Operation: operation,
		Message:   message,
		Context:   make(map[string]interface{}),
		Stack:     captureStack(),
	}
}

// Wrap wraps an existing error with additional context
func Wrap(err error, errType ErrorType, operation, message string) *StructuredError {
	if err == nil {
		return nil
	}

	return &StructuredError{
		Type:      errType,
		Operation: operation,
		Message:   message,
		Cause:     err,
		Context:   make(map[string]interface{}),
		Stack:     captureStack(),
	}
}

// WithContext adds context information to an error
func (e *StructuredError) WithContext(key string, value interface{}) *StructuredError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

func captureStack() []uintptr {
	const depth = 32
	var pcs [depth]uintptr
	n := runtime.Callers(3, pcs[:])
	return pcs[:n]
}

// NewInvalidInput creates a validation error that matches ErrInvalidInput.
func NewInvalidInput(operation, message string) *StructuredError {
	return Wrap(ErrInvalidInput, ErrorTypeValidation, operation, message)
}

// InvalidInputf is NewInvalidInput with a formatted message.
func InvalidInputf(operation, format string, args ...interface{}) *StructuredError {
	return Wrap(ErrInvalidInput, ErrorTypeValidation, operation, fmt.Sprintf(format, args...))
}

// NewResourceExhausted creates a resource error that matches ErrResourceExhausted.
func NewResourceExhausted(operation, message string) *StructuredError {
	return Wrap(ErrResourceExhausted, ErrorTypeResource, operation, message)
}

// NewConfigurationError creates a configuration error. It also matches
// ErrInvalidInput: a bad option is a violated precondition.
func NewConfigurationError(operation, message string) *StructuredError {
	return Wrap(ErrInvalidInput, ErrorTypeConfiguration, operation, message)
}

// WrapComputationError wraps an error as a computation error
func WrapComputationError(err error, operation, message string) *StructuredError {
	return Wrap(err, ErrorTypeComputation, operation, message)
}

// WrapIOError wraps an error raised while reading or writing series data.
func WrapIOError(err error, operation, message string) *StructuredError {
	return Wrap(err, ErrorTypeIO, operation, message)
}

// FromPanic converts a value recovered from a worker into an error. Allocation
// failures become ErrResourceExhausted; anything else is a computation error.
func FromPanic(operation string, r interface{}) error {
	if err, ok := r.(runtime.Error); ok {
		msg := err.Error()
		if isAllocationFailure(msg) {
			return NewResourceExhausted(operation, msg)
		}
		return WrapComputationError(err, operation, "worker panicked")
	}
	if err, ok := r.(error); ok {
		return WrapComputationError(err, operation, "worker panicked")
	}
	return New(ErrorTypeComputation, operation, fmt.Sprintf("worker panicked: %v", r))
}

func isAllocationFailure(msg string) bool {
	msg = strings.ToLower(msg)
	for _, s := range []string{"makeslice", "out of memory", "growslice"} {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}
