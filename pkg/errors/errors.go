// Package errors provides structured error types for the Slanttower application.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the CLI and the library
//   - Machine-readable error codes for programmatic handling
//   - Attribution of geometry failures to the face and bundle role involved
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - INVALID_*: Input validation failures (dimensions, faces, features, config)
//   - DEGENERATE_GEOMETRY, EDGE_SELECTION_MISMATCH: Build failures
//   - INTERNAL_*: Unexpected internal errors
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidDimension, "height must be positive, got %g", h)
//	if errors.Is(err, errors.ErrCodeInvalidDimension) {
//	    // Handle validation error
//	}
//
//	// Attribute a kernel failure to the bundle being combined
//	err := errors.Wrap(errors.ErrCodeDegenerateGeometry, origErr, "union failed").
//	    At("front", errors.RoleAdd)
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
	ErrCodeInvalidInput     Code = "INVALID_INPUT"
	ErrCodeInvalidDimension Code = "INVALID_DIMENSION"
	ErrCodeInvalidFace      Code = "INVALID_FACE"
	ErrCodeInvalidFeature   Code = "INVALID_FEATURE"
	ErrCodeInvalidConfig    Code = "INVALID_CONFIG"
	ErrCodeInvalidFormat    Code = "INVALID_FORMAT"
	ErrCodeInvalidPath      Code = "INVALID_PATH"

	// Build errors
	ErrCodeDegenerateGeometry    Code = "DEGENERATE_GEOMETRY"
	ErrCodeEdgeSelectionMismatch Code = "EDGE_SELECTION_MISMATCH"

	// Resource errors
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"
	ErrCodeCache        Code = "CACHE_ERROR"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Role names the half of a feature bundle an error is attributed to.
type Role string

const (
	RoleAdd      Role = "add"
	RoleSubtract Role = "subtract"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)

	Face string // Face being processed when the error occurred (optional)
	Role Role   // Bundle role being combined (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	switch {
	case e.Face != "" && e.Role != "":
		msg = fmt.Sprintf("%s [%s/%s]", msg, e.Face, e.Role)
	case e.Face != "":
		msg = fmt.Sprintf("%s [%s]", msg, e.Face)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, msg, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, msg)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// At sets the face and role the error is attributed to and returns e.
func (e *Error) At(face string, role Role) *Error {
	e.Face = face
	e.Role = role
	return e
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

// Attribution returns the face and role of the outermost *Error in the chain
// that carries a face.
func Attribution(err error) (face string, role Role, ok bool) {
	for err != nil {
		var e *Error
		if !errors.As(err, &e) {
			return "", "", false
		}
		if e.Face != "" {
			return e.Face, e.Role, true
		}
		err = e.Cause
	}
	return "", "", false
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		if e.Face != "" {
			return fmt.Sprintf("%s (face %s)", e.Message, e.Face)
		}
		return e.Message
	}
	return err.Error()
}
