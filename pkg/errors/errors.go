// Package errors provides structured error types for modelviz.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across CLI and HTTP API
//   - Machine-readable error codes for programmatic handling
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Codes fall into a few groups:
//   - INVALID_*: Input or configuration validation failures
//   - METADATA_UNAVAILABLE: The module could not be opened or parsed
//   - ENTRY_NOT_FOUND: The requested call-graph entry method does not exist
//   - RENDER_FAILURE: The external renderer is missing or exited non-zero
//   - INTERNAL_ERROR: Unexpected internal errors
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidInput, "unknown format: %s", format)
//	if errors.Is(err, errors.ErrCodeInvalidInput) {
//	    // Handle validation error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeMetadataUnavailable, origErr, "open %s", path)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"
	ErrCodeInvalidPath   Code = "INVALID_PATH"
	ErrCodeInvalidConfig Code = "INVALID_CONFIG"

	// Metadata errors
	ErrCodeMetadataUnavailable Code = "METADATA_UNAVAILABLE"
	ErrCodeEntryNotFound       Code = "ENTRY_NOT_FOUND"
	ErrCodeUnsupported         Code = "UNSUPPORTED"

	// Rendering errors
	ErrCodeRenderFailure Code = "RENDER_FAILURE"

	// Internal errors
	ErrCodeInternal Code = "INTERNAL_ERROR"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// RenderError describes a failed renderer invocation. It is carried as the
// Cause of an ErrCodeRenderFailure error so callers can inspect the exit code
// and captured stderr without re-running the renderer.
type RenderError struct {
	Binary   string // Renderer executable
	Document string // Path of the graph document handed to the renderer
	Output   string // Requested image path
	ExitCode int    // Process exit code, -1 when the process never started
	Stderr   string // Captured standard error (trimmed)
}

// Error implements the error interface.
func (e *RenderError) Error() string {
	if e.ExitCode < 0 {
		return fmt.Sprintf("%s could not be started for %s", e.Binary, e.Document)
	}
	msg := fmt.Sprintf("%s exited with status %d rendering %s -> %s", e.Binary, e.ExitCode, e.Document, e.Output)
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	}
	return msg
}

// Code returns the error code for this error type.
func (e *RenderError) Code() Code {
	return ErrCodeRenderFailure
}
