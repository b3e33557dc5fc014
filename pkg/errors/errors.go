// Package errors provides structured error types for depscope.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the analysis pipeline and the CLI
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Most codes describe conditions that the analysis deliberately survives:
//   - DECODE_ERROR: one compiled unit is malformed and is skipped
//   - ARCHIVE_READ_ERROR: one dependency archive is unreadable and is treated as used
//   - MISSING_INPUT: the classes directory or the resolved graph is absent
//   - LOOKUP_MISS: a conflict winner could not be located in the tree
//
// The remaining codes (INVALID_*, FILE_NOT_FOUND, INTERNAL_ERROR) are returned
// to callers when a run cannot even start.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidCoordinate, "missing version in %q", s)
//	if errors.Is(err, errors.ErrCodeInvalidCoordinate) {
//	    // Handle validation error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeArchiveRead, origErr, "open %s", path)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Degradable analysis conditions
	ErrCodeDecode       Code = "DECODE_ERROR"
	ErrCodeArchiveRead  Code = "ARCHIVE_READ_ERROR"
	ErrCodeMissingInput Code = "MISSING_INPUT"
	ErrCodeLookupMiss   Code = "LOOKUP_MISS"

	// Input validation errors
	ErrCodeInvalidInput      Code = "INVALID_INPUT"
	ErrCodeInvalidCoordinate Code = "INVALID_COORDINATE"
	ErrCodeInvalidConfig     Code = "INVALID_CONFIG"
	ErrCodeInvalidFormat     Code = "INVALID_FORMAT"

	// Resource not found errors
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"

	// Gate failures reported by the CLI
	ErrCodeUnusedFound Code = "UNUSED_DEPENDENCIES"

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

// Degradable reports whether err carries one of the codes the analysis
// recovers from (decode, archive read, missing input, lookup miss).
func Degradable(err error) bool {
	switch GetCode(err) {
	case ErrCodeDecode, ErrCodeArchiveRead, ErrCodeMissingInput, ErrCodeLookupMiss:
		return true
	}
	return false
}
