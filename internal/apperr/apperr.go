// Package apperr defines the error taxonomy shared by services and handlers.
//
// Services return *Error values; the HTTP layer maps the Code to a status
// and renders Fields as a field-level error map.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Code represents a machine-readable error code.
type Code string

const (
	CodeValidation   Code = "VALIDATION"
	CodeUnauthorized Code = "UNAUTHORIZED"
	CodeNotFound     Code = "NOT_FOUND"
	CodeRateLimited  Code = "RATE_LIMITED"
	CodeInternal     Code = "INTERNAL"
)

// HTTPStatus returns the HTTP status code for an error code.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeValidation:
		return http.StatusBadRequest
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeNotFound:
		return http.StatusNotFound
	case CodeRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// Fields maps a request field name to a human readable problem.
// NonFieldErrors is used for errors that do not belong to one field.
type Fields map[string]string

const NonFieldErrors = "non_field_errors"

// Error is a domain error with a code, message and optional field details.
type Error struct {
	Code    Code
	Message string
	Fields  Fields
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Is matches any *Error with the same Code.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// HTTPStatus returns the HTTP status code for this error.
func (e *Error) HTTPStatus() int {
	return e.Code.HTTPStatus()
}

// Sentinels for errors.Is.
var (
	ErrValidation   = &Error{Code: CodeValidation, Message: "validation failed"}
	ErrUnauthorized = &Error{Code: CodeUnauthorized, Message: "authentication credentials were not provided"}
	ErrNotFound     = &Error{Code: CodeNotFound, Message: "not found"}
	ErrInternal     = &Error{Code: CodeInternal, Message: "internal error"}
)

// Validation creates a validation error carrying field details.
func Validation(msg string, fields Fields) *Error {
	return &Error{Code: CodeValidation, Message: msg, Fields: fields}
}

// FieldError is shorthand for a validation error on a single field.
func FieldError(field, msg string) *Error {
	return Validation("validation failed", Fields{field: msg})
}

func Unauthorized(msg string) *Error {
	return &Error{Code: CodeUnauthorized, Message: msg}
}

func NotFound(msg string) *Error {
	return &Error{Code: CodeNotFound, Message: msg}
}

func RateLimited(msg string) *Error {
	return &Error{Code: CodeRateLimited, Message: msg}
}

// Internal wraps an unexpected error; the cause is logged, never rendered.
func Internal(err error, msg string) *Error {
	return &Error{Code: CodeInternal, Message: msg, cause: err}
}

// From converts any error into an *Error, treating unknown errors as internal.
func From(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Internal(err, "internal server error")
}
