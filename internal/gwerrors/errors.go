// Package gwerrors defines the stable error-kind vocabulary shared across
// the gateway, dispatch chain and view model.
package gwerrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind is a stable, machine-readable error code surfaced to clients as
// the "code" field of an error response.
type Kind string

const (
	KindNotAvailable          Kind = "E_HTTP_SERVER_NOT_AVAILABLE"
	KindUpstreamAborted       Kind = "E_HTTP_SERVER_UPSTREAM_ABORTED"
	KindUpstreamError         Kind = "E_HTTP_SERVER_UPSTREAM_ERROR"
	KindUpstreamClosed        Kind = "E_HTTP_SERVER_UPSTREAM_CLOSED"
	KindStreamClosed          Kind = "E_HTTP_SERVER_STREAM_CLOSED"
	KindDownstreamError       Kind = "E_HTTP_SERVER_DOWNSTREAM_ERROR"
	KindPropertyNotReadable   Kind = "E_HTTP_SERVER_VIEW_MODEL_PROPERTY_NOT_READABLE"
	KindPropertyNotWritable   Kind = "E_HTTP_SERVER_VIEW_MODEL_PROPERTY_NOT_WRITABLE"
	KindChannelTransformError Kind = "E_HTTP_SERVER_CHANNEL_TRANSFORM_FAILED"
	KindNoRoute               Kind = "E_HTTP_SERVER_NO_ROUTE"
	KindHeaderMissing         Kind = "E_HTTP_SERVER_HEADER_MISSING"
	KindInvalidBody           Kind = "E_HTTP_SERVER_INVALID_BODY"
	KindDispatchFailed        Kind = "E_HTTP_SERVER_DISPATCH_FAILED"
)

// ErrNotAvailable is the sentinel behind KindNotAvailable, so callers can
// use errors.Is without depending on the wrapping *Error.
var ErrNotAvailable = errors.New("gateway not available in current state")

// Error is the structured error type raised by the core. Status defaults
// to 500 when unset; Headers carries hint headers such as Allow/Accept
// that the view model copies into the error response.
type Error struct {
	Kind    Kind
	Status  int
	Message string
	Headers http.Header
	Cause   error
}

// New creates an *Error with the given kind and message. Status defaults
// to 500 unless overridden with WithStatus.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Status: http.StatusInternalServerError, Message: message}
}

// WithStatus sets the HTTP status code and returns the receiver for chaining.
func (e *Error) WithStatus(status int) *Error {
	e.Status = status
	return e
}

// WithHeader adds a hint header (e.g. Allow, Accept) and returns the receiver.
func (e *Error) WithHeader(name, value string) *Error {
	if e.Headers == nil {
		e.Headers = make(http.Header)
	}
	e.Headers.Add(name, value)
	return e
}

// WithCause sets the wrapped cause and returns the receiver.
func (e *Error) WithCause(cause error) *Error {
	e.Cause = cause
	return e
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Message == "" {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the wrapped cause so errors.Is/As can traverse it.
func (e *Error) Unwrap() error {
	return e.Cause
}

// StatusCode returns the effective HTTP status, defaulting to 500.
func (e *Error) StatusCode() int {
	if e.Status == 0 {
		return http.StatusInternalServerError
	}
	return e.Status
}

// DispatchFailed wraps an underlying dispatcher error as raised by the
// dispatch chain when a dispatcher rejects.
func DispatchFailed(cause error) *Error {
	return New(KindDispatchFailed, "dispatcher rejected the request").WithCause(cause)
}
