// Package errors provides coded errors for the outer surfaces of cellgraph:
// codecs, stores, caches, the pipeline, the CLI and the HTTP API.
//
// The core packages (model, view, graph) never return errors for
// structural operations; lookups of unknown cells yield zero values.
// Everything that reads input or talks to a backend reports failures as an
// [*Error] carrying a machine-readable [Code].
//
// # Error Codes
//
//   - INVALID_*: input that could not be parsed or is inconsistent
//   - *NOT_FOUND: a document, cell or artifact that does not exist
//   - INTERNAL_ERROR, UNSUPPORTED: everything else
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidDocument, "cell %q has unknown parent %q", id, parent)
//	if errors.Is(err, errors.ErrCodeInvalidDocument) {
//	    // reject the upload
//	}
//
//	err := errors.Wrap(errors.ErrCodeInternal, cause, "save %s", id)
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
	// Input validation errors
	ErrCodeInvalidInput    Code = "INVALID_INPUT"
	ErrCodeInvalidFormat   Code = "INVALID_FORMAT"
	ErrCodeInvalidStyle    Code = "INVALID_STYLE"
	ErrCodeInvalidDocument Code = "INVALID_DOCUMENT"
	ErrCodeInvalidChange   Code = "INVALID_CHANGE"
	ErrCodeInvalidPath     Code = "INVALID_PATH"
	ErrCodeInvalidConfig   Code = "INVALID_CONFIG"

	// Resource not found errors
	ErrCodeNotFound         Code = "NOT_FOUND"
	ErrCodeDocumentNotFound Code = "DOCUMENT_NOT_FOUND"
	ErrCodeCellNotFound     Code = "CELL_NOT_FOUND"
	ErrCodeFileNotFound     Code = "FILE_NOT_FOUND"

	// Backend errors
	ErrCodeBackend Code = "BACKEND_ERROR"

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

// IsNotFound reports whether err carries any of the not-found codes.
func IsNotFound(err error) bool {
	switch GetCode(err) {
	case ErrCodeNotFound, ErrCodeDocumentNotFound, ErrCodeCellNotFound, ErrCodeFileNotFound:
		return true
	}
	return false
}

// HTTPStatus maps the code of err to an HTTP status. Errors without a code
// are internal.
func HTTPStatus(err error) int {
	switch code := GetCode(err); {
	case IsNotFound(err):
		return http.StatusNotFound
	case code == ErrCodeUnsupported:
		return http.StatusNotImplemented
	case code == ErrCodeBackend:
		return http.StatusBadGateway
	case code == ErrCodeInvalidInput, code == ErrCodeInvalidFormat, code == ErrCodeInvalidStyle,
		code == ErrCodeInvalidDocument, code == ErrCodeInvalidChange, code == ErrCodeInvalidPath,
		code == ErrCodeInvalidConfig:
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
