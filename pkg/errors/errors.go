// Package errors provides structured error handling for LogSift.
// Errors carry codes, key-value context, and stack traces so failures
// can be handled programmatically at the API boundary.
package errors

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
)

// Code identifies an error class for programmatic handling.
type Code string

const (
	// Input errors (1xx)
	CodeFileNotFound     Code = "E101"
	CodeFilePermission   Code = "E102"
	CodeInvalidInput     Code = "E103"
	CodeInvalidTimestamp Code = "E105"

	// Processing errors (2xx)
	CodeParseFailed Code = "E201"
	CodeEmptyWindow Code = "E202"

	// Output errors (3xx)
	CodeWriteFailed Code = "E301"
	CodeExportErr   Code = "E302"

	// System errors (4xx)
	CodeContextCanceled Code = "E401"
	CodeTimeout         Code = "E402"

	// Remote source errors (5xx)
	CodeRemoteFetch Code = "E501"

	// Unknown
	CodeUnknown Code = "E999"
)

// SiftError is the base error type for all LogSift errors.
type SiftError struct {
	Code       Code
	Message    string
	Cause      error
	Context    map[string]interface{}
	StackTrace []Frame
}

// Frame represents a stack frame.
type Frame struct {
	Function string
	File     string
	Line     int
}

// Error implements the error interface.
func (e *SiftError) Error() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("[%s] %s", e.Code, e.Message))

	if len(e.Context) > 0 {
		sb.WriteString(" (")
		first := true
		for k, v := range e.Context {
			if !first {
				sb.WriteString(", ")
			}
			sb.WriteString(fmt.Sprintf("%s=%v", k, v))
			first = false
		}
		sb.WriteString(")")
	}

	if e.Cause != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Cause.Error())
	}

	return sb.String()
}

// Unwrap returns the underlying cause.
func (e *SiftError) Unwrap() error {
	return e.Cause
}

// Is checks if this error matches a target error by code.
func (e *SiftError) Is(target error) bool {
	if t, ok := target.(*SiftError); ok {
		return e.Code == t.Code
	}
	return false
}

// WithContext adds context to the error.
func (e *SiftError) WithContext(key string, value interface{}) *SiftError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// New creates a new SiftError.
func New(code Code, message string) *SiftError {
	return &SiftError{
		Code:       code,
		Message:    message,
		StackTrace: captureStack(2),
	}
}

// Wrap wraps an existing error with a code and message.
func Wrap(err error, code Code, message string) *SiftError {
	if err == nil {
		return nil
	}

	return &SiftError{
		Code:       code,
		Message:    message,
		Cause:      err,
		StackTrace: captureStack(2),
	}
}

// Wrapf wraps an error with a formatted message.
func Wrapf(err error, code Code, format string, args ...interface{}) *SiftError {
	return Wrap(err, code, fmt.Sprintf(format, args...))
}

// captureStack captures the current stack trace.
func captureStack(skip int) []Frame {
	var frames []Frame
	pcs := make([]uintptr, 32)
	n := runtime.Callers(skip+1, pcs)
	pcs = pcs[:n]

	cf := runtime.CallersFrames(pcs)
	for {
		frame, more := cf.Next()
		frames = append(frames, Frame{
			Function: frame.Function,
			File:     frame.File,
			Line:     frame.Line,
		})
		if !more || len(frames) >= 10 {
			break
		}
	}
	return frames
}

// FormatStack returns a formatted stack trace.
func (e *SiftError) FormatStack() string {
	var sb strings.Builder
	for _, f := range e.StackTrace {
		sb.WriteString(fmt.Sprintf("  at %s\n    %s:%d\n", f.Function, f.File, f.Line))
	}
	return sb.String()
}

// --- Convenience constructors ---

// FileNotFound creates a file not found error.
func FileNotFound(path string) *SiftError {
	return New(CodeFileNotFound, "log file not found").WithContext("path", path)
}

// InvalidTimestamp creates a timestamp parsing error.
func InvalidTimestamp(value string, line int) *SiftError {
	return New(CodeInvalidTimestamp, "failed to parse timestamp").
		WithContext("value", value).
		WithContext("line", line)
}

// ParseError creates a per-line parsing error.
func ParseError(line int, err error) *SiftError {
	return Wrap(err, CodeParseFailed, "parse error").
		WithContext("line", line)
}

// ContextCanceled creates a cancellation error.
func ContextCanceled(operation string) *SiftError {
	return New(CodeContextCanceled, "operation canceled").
		WithContext("operation", operation)
}

// --- Error checking utilities ---

// IsCode checks if an error has a specific code.
func IsCode(err error, code Code) bool {
	var se *SiftError
	if errors.As(err, &se) {
		return se.Code == code
	}
	return false
}

// GetCode extracts the error code from an error.
func GetCode(err error) Code {
	var se *SiftError
	if errors.As(err, &se) {
		return se.Code
	}
	return CodeUnknown
}
