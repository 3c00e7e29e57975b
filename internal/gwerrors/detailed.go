package gwerrors

import (
	"fmt"
	"strings"
)

// DetailedError is a dispatcher-facing error carrying a message, an
// opaque code, an optional status override and an optional cause. Cause
// may be nil, another error (including *DetailedError), a []any of
// further causes, or a bare value to be stringified — mirroring the
// dynamic "cause" field dispatchers may attach during the details walk,
// which is not representable with a single-error Unwrap chain alone
// (Go's Unwrap() []error only generalizes the "list" case, not the
// "bare value" case).
type DetailedError struct {
	Message string
	Code    string
	Status  int
	Cause   any
}

// Error implements the error interface.
func (e *DetailedError) Error() string { return e.Message }

// ErrorCode returns the opaque code surfaced as the response's "code" field.
func (e *DetailedError) ErrorCode() string { return e.Code }

// StatusCode returns the status override, or 0 to let the caller default.
func (e *DetailedError) StatusCode() int { return e.Status }

// coder is implemented by errors that carry an opaque machine-readable code.
type coder interface{ ErrorCode() string }

// statusCoder is implemented by errors that carry an HTTP status override.
type statusCoder interface{ StatusCode() int }

// Describe extracts (status, code) from err, defaulting status to 500 and
// code to "" when err doesn't implement the optional interfaces.
func Describe(err error) (status int, code string) {
	status = 500
	if sc, ok := err.(statusCoder); ok {
		if s := sc.StatusCode(); s != 0 {
			status = s
		}
	}
	if c, ok := err.(coder); ok {
		code = c.ErrorCode()
	}
	return status, code
}

// ErrorCode implements coder so *Error's Kind participates in Describe.
func (e *Error) ErrorCode() string { return string(e.Kind) }

// messager is implemented by errors whose Error() string combines extra
// context (e.g. *Error prefixes its Kind) so callers needing the bare
// message for display can ask for it directly.
type messager interface{ ErrorMessage() string }

// ErrorMessage returns the bare dispatcher-facing message for *Error,
// distinct from Error() which prefixes the kind for logs.
func (e *Error) ErrorMessage() string { return e.Message }

// ErrorMessage returns the bare message for *DetailedError.
func (e *DetailedError) ErrorMessage() string { return e.Message }

// Message returns err's bare display message: the Message field for
// *Error/*DetailedError, or err.Error() for anything else.
func Message(err error) string {
	if m, ok := err.(messager); ok {
		return m.ErrorMessage()
	}
	return err.Error()
}

// causer exposes the next link in a details chain, one level at a time.
type causer interface{ ErrorCause() any }

// ErrorCause returns the wrapped cause for *Error.
func (e *Error) ErrorCause() any {
	if e.Cause == nil {
		return nil
	}
	return e.Cause
}

// ErrorCause returns the wrapped cause for *DetailedError.
func (e *DetailedError) ErrorCause() any { return e.Cause }

// CauseChainDetails walks err's cause chain and builds the "details"
// list for an error response body:
//   - an error cause contributes "<code> - <message>" (trimmed) and
//     recurses into its own cause;
//   - a []any cause recurses into each element in order;
//   - a nil cause stops the walk;
//   - anything else is stringified and pushed as-is.
//
// A visited set breaks cycles. The walk starts at err's own cause, not
// at err itself (err's message/code are already the top-level fields).
func CauseChainDetails(err error) []string {
	var details []string
	visited := make(map[error]bool)
	if c, ok := err.(causer); ok {
		walkCause(c.ErrorCause(), visited, &details)
	}
	return details
}

func walkCause(cause any, visited map[error]bool, details *[]string) {
	if cause == nil {
		return
	}
	if list, ok := cause.([]any); ok {
		for _, el := range list {
			walkCause(el, visited, details)
		}
		return
	}
	if err, ok := cause.(error); ok {
		if visited[err] {
			return
		}
		visited[err] = true
		_, code := Describe(err)
		line := Message(err)
		if code != "" {
			line = code + " - " + line
		}
		*details = append(*details, strings.TrimSpace(line))
		if c, ok := err.(causer); ok {
			walkCause(c.ErrorCause(), visited, details)
		}
		return
	}
	*details = append(*details, strings.TrimSpace(fmt.Sprintf("%v", cause)))
}
