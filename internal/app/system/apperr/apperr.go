// Package apperr defines the error taxonomy shared by every mutator and
// the HTTP layer.
//
// Validation and permission errors are raised immediately and surfaced
// verbatim to the caller. Downstream provider errors (email send
// failures) are logged and, for invitation creation specifically,
// swallowed so the primary write still reports success; see the mailer
// call sites.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Code identifies one class of failure. The string values double as the
// wire-level error codes in JSON responses.
type Code string

const (
	Unauthenticated    Code = "unauthenticated"
	PermissionDenied   Code = "permission-denied"
	InvalidArgument    Code = "invalid-argument"
	NotFound           Code = "not-found"
	AlreadyExists      Code = "already-exists"
	DuplicateRequest   Code = "duplicate-request"
	Expired            Code = "expired"
	ResourceExhausted  Code = "resource-exhausted"
	FailedPrecondition Code = "failed-precondition"
	Internal           Code = "internal"
)

// Error is a coded application error. Message is safe to show callers;
// Err (if set) is the underlying cause and is only logged.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// New builds a coded error with a caller-facing message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf is New with formatting.
func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and caller-facing message to an underlying error.
func Wrap(code Code, message string, err error) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

// CodeOf extracts the Code from err, or Internal when err carries none.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return Internal
}

// MessageOf extracts the caller-facing message from err. Uncoded errors
// get a generic message so internals never leak to callers.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "internal error"
}

// Is reports whether err carries the given code.
func Is(err error, code Code) bool {
	return CodeOf(err) == code
}

// HTTPStatus maps a code to its HTTP response status.
func HTTPStatus(code Code) int {
	switch code {
	case Unauthenticated:
		return http.StatusUnauthorized
	case PermissionDenied:
		return http.StatusForbidden
	case InvalidArgument:
		return http.StatusBadRequest
	case NotFound:
		return http.StatusNotFound
	case AlreadyExists, DuplicateRequest:
		return http.StatusConflict
	case Expired:
		return http.StatusGone
	case ResourceExhausted:
		return http.StatusTooManyRequests
	case FailedPrecondition, Internal:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
