package api

import (
	"fmt"
	"net/http"
)

// Machine-readable reasons returned in the "error" field.
const (
	ReasonPromptRequired  = "prompt required"
	ReasonNoModelsEnabled = "no models enabled"
	ReasonInvalidBody     = "invalid request body"
	ReasonBodyTooLarge    = "request body too large"
	ReasonInvalidQuery    = "invalid query"
	ReasonServerError     = "server_error"
	ReasonUnauthorized    = "unauthorized"
	ReasonNotFound        = "not_found"
)

// Error is the error shape every handler reports through c.Error.
type Error struct {
	// HTTP status code
	Status int
	// Reason is safe to show to the client
	Reason string
	// Detail is a longer, human readable explanation for logs
	Detail string
	// Log is the original error, never serialized
	Log error
}

func (e *Error) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("[%d] %s: %s", e.Status, e.Reason, e.Detail)
	}
	return fmt.Sprintf("[%d] %s", e.Status, e.Reason)
}

func (e *Error) Unwrap() error {
	return e.Log
}

// Body returns the JSON payload written to the client.
func (e *Error) Body() ErrorResponse {
	return ErrorResponse{Error: e.Reason}
}

type ErrorOption func(*Error)

// NewError creates an Error with the given status and reason.
func NewError(status int, reason string, opts ...ErrorOption) *Error {
	e := &Error{Status: status, Reason: reason}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// WithDetail attaches a human readable explanation.
func WithDetail(detail string) ErrorOption {
	return func(e *Error) {
		e.Detail = detail
	}
}

// WithLog attaches an internal error for server-side logging
func WithLog(err error) ErrorOption {
	return func(e *Error) {
		e.Log = err
	}
}

// InvalidRequest creates a 400 for malformed or incomplete caller input.
func InvalidRequest(reason string, opts ...ErrorOption) *Error {
	return NewError(http.StatusBadRequest, reason, opts...)
}

// BodyTooLarge creates a 413 for a body over the size cap.
func BodyTooLarge(limit int64) *Error {
	return NewError(http.StatusRequestEntityTooLarge, ReasonBodyTooLarge,
		WithDetail(fmt.Sprintf("body exceeds %d bytes", limit)))
}

// InternalError hides err behind the generic server_error reason.
func InternalError(err error) *Error {
	return NewError(http.StatusInternalServerError, ReasonServerError, WithLog(err))
}

// UnauthorizedError creates a 401 unauthed error
func UnauthorizedError(detail string) *Error {
	return NewError(http.StatusUnauthorized, ReasonUnauthorized, WithDetail(detail))
}
