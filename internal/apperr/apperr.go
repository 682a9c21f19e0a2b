// Package apperr carries the error codes surfaced to API callers.
package apperr

import (
	"errors"
	"net/http"
)

type Code string

const (
	CodeNotFound     Code = "NOT_FOUND"
	CodeBadRequest   Code = "BAD_REQUEST"
	CodeForbidden    Code = "FORBIDDEN"
	CodeUnauthorized Code = "UNAUTHORIZED"
	CodeConflict     Code = "CONFLICT"
	CodeInternal     Code = "INTERNAL"
)

// StatusCode maps a code onto the HTTP status echoed in response envelopes.
func (c Code) StatusCode() int {
	switch c {
	case CodeNotFound:
		return http.StatusNotFound
	case CodeBadRequest:
		return http.StatusBadRequest
	case CodeForbidden:
		return http.StatusForbidden
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Error is a coded failure. Message is safe to show to callers; Err is the
// underlying cause and is only logged.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Extensions is read by the GraphQL executor and attached to the error entry.
func (e *Error) Extensions() map[string]interface{} {
	return map[string]interface{}{
		"code":       string(e.Code),
		"statusCode": e.Code.StatusCode(),
	}
}

func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

func Wrap(code Code, message string, err error) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

func NotFound(message string) *Error     { return New(CodeNotFound, message) }
func BadRequest(message string) *Error   { return New(CodeBadRequest, message) }
func Forbidden(message string) *Error    { return New(CodeForbidden, message) }
func Unauthorized(message string) *Error { return New(CodeUnauthorized, message) }
func Conflict(message string) *Error     { return New(CodeConflict, message) }

func Internal(err error) *Error {
	return Wrap(CodeInternal, "Internal server error", err)
}

// From returns err as an *Error. Anything uncoded becomes INTERNAL with a
// generic message.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal(err)
}

func CodeOf(err error) Code {
	if err == nil {
		return ""
	}
	return From(err).Code
}

func Is(err error, code Code) bool {
	return err != nil && CodeOf(err) == code
}
