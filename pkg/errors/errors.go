// Package errors provides structured error types for the tsvisio engine.
//
// Every engine package reports failures as an [*Error] carrying a machine-readable
// [Code]. Callers (the page API, the HTTP service, the CLI) switch on the code to
// produce user-facing diagnostics instead of parsing message strings.
//
// # Error Codes
//
// Codes fall into three groups:
//   - Structural: SHAPE_NOT_FOUND, CYCLIC_ANCESTRY, DUPLICATE_SHAPE, INVALID_MEMBERSHIP
//   - Input validation: INVALID_DIMENSIONS, INVALID_INPUT
//   - Collaborators: NOT_FOUND, STORE_ERROR, LAYOUT_ERROR, INTERNAL_ERROR
//
// # Usage
//
//	err := errors.New(errors.ErrCodeShapeNotFound, "shape %q", id)
//	if errors.Is(err, errors.ErrCodeShapeNotFound) {
//	    // report the dangling reference
//	}
//
//	// Wrap a backend failure
//	err := errors.Wrap(errors.ErrCodeStore, origErr, "save page %s", pageID)
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Structural errors
	ErrCodeShapeNotFound     Code = "SHAPE_NOT_FOUND"
	ErrCodeCyclicAncestry    Code = "CYCLIC_ANCESTRY"
	ErrCodeDuplicateShape    Code = "DUPLICATE_SHAPE"
	ErrCodeInvalidMembership Code = "INVALID_MEMBERSHIP"

	// Input validation errors
	ErrCodeInvalidDimensions Code = "INVALID_DIMENSIONS"
	ErrCodeInvalidInput      Code = "INVALID_INPUT"

	// Collaborator errors
	ErrCodeNotFound Code = "NOT_FOUND"
	ErrCodeStore    Code = "STORE_ERROR"
	ErrCodeLayout   Code = "LAYOUT_ERROR"
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

// HTTPStatus maps an error to the HTTP status code the API reports for it.
// Errors without a code are treated as internal failures.
func HTTPStatus(err error) int {
	switch GetCode(err) {
	case ErrCodeShapeNotFound, ErrCodeNotFound:
		return http.StatusNotFound
	case ErrCodeDuplicateShape:
		return http.StatusConflict
	case ErrCodeInvalidDimensions, ErrCodeInvalidInput, ErrCodeInvalidMembership:
		return http.StatusBadRequest
	case ErrCodeCyclicAncestry:
		return http.StatusUnprocessableEntity
	case ErrCodeLayout, ErrCodeStore:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
