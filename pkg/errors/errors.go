// Package errors provides structured error types for gitnetwork.
//
// Errors carry a machine-readable [Code] so the CLI and the HTTP API can
// react to them the same way: the CLI prints [UserMessage], the API maps
// the code to a status with [HTTPStatus].
//
// # Error Codes
//
//   - INVALID_*: input validation failures
//   - *NOT_FOUND: missing repositories, commits or stored layouts
//   - NETWORK_ERROR, TIMEOUT: backend failures (git, cache, store)
//   - DUPLICATE_COMMIT, INVARIANT_VIOLATION: layout engine failures
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidRef, "invalid ref: %s", ref)
//	if errors.Is(err, errors.ErrCodeInvalidRef) {
//	    // Handle validation error
//	}
//
//	err := errors.Wrap(errors.ErrCodeNetwork, origErr, "git log in %s", dir)
package errors

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/matzehuels/gitnetwork/pkg/network"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidRef    Code = "INVALID_REF"
	ErrCodeInvalidCommit Code = "INVALID_COMMIT"
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"
	ErrCodeInvalidPath   Code = "INVALID_PATH"

	// Resource not found errors
	ErrCodeNotFound       Code = "NOT_FOUND"
	ErrCodeRepoNotFound   Code = "REPO_NOT_FOUND"
	ErrCodeCommitNotFound Code = "COMMIT_NOT_FOUND"
	ErrCodeLayoutNotFound Code = "LAYOUT_NOT_FOUND"

	// Backend errors
	ErrCodeNetwork Code = "NETWORK_ERROR"
	ErrCodeTimeout Code = "TIMEOUT"

	// Layout engine errors
	ErrCodeDuplicateCommit    Code = "DUPLICATE_COMMIT"
	ErrCodeInvariantViolation Code = "INVARIANT_VIOLATION"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
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
//
// Layout engine errors that were never wrapped in an *Error are classified
// by their sentinel. Returns empty string for anything else.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	switch {
	case errors.Is(err, network.ErrDuplicateCommit):
		return ErrCodeDuplicateCommit
	case errors.Is(err, network.ErrInvariantViolation):
		return ErrCodeInvariantViolation
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

// HTTPStatus maps the code of err to an HTTP status.
func HTTPStatus(err error) int {
	switch GetCode(err) {
	case ErrCodeInvalidInput, ErrCodeInvalidRef, ErrCodeInvalidCommit,
		ErrCodeInvalidFormat, ErrCodeInvalidPath:
		return http.StatusBadRequest
	case ErrCodeNotFound, ErrCodeRepoNotFound, ErrCodeCommitNotFound, ErrCodeLayoutNotFound:
		return http.StatusNotFound
	case ErrCodeDuplicateCommit:
		return http.StatusConflict
	case ErrCodeUnsupported:
		return http.StatusNotImplemented
	case ErrCodeTimeout:
		return http.StatusGatewayTimeout
	case ErrCodeNetwork:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
