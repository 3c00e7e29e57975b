package view

import (
	"fmt"
	"strings"

	"github.com/dispatchgate/multiplex/internal/gwerrors"
)

// FieldNames is the fixed, enumerable set of fields the view model
// exposes to dispatchers through the dynamic Get/Set escape hatch.
var FieldNames = []string{"body", "headers", "status", "stream"}

// PropertyError reports misuse of the dynamic Get/Set accessors: reading
// or writing a name outside FieldNames, or writing a read-only one. It
// carries the valid field names so the dispatch chain's error path can
// report them to the caller.
type PropertyError struct {
	Kind  gwerrors.Kind
	Name  string
	Valid []string
}

func (e *PropertyError) Error() string {
	return fmt.Sprintf("view: property %q is not %s (valid: %s)", e.Name, accessKind(e.Kind), strings.Join(e.Valid, ", "))
}

// ErrorCode implements gwerrors' coder interface so Describe preserves
// Kind as the response's "code" field instead of dropping it.
func (e *PropertyError) ErrorCode() string { return string(e.Kind) }

// StatusCode implements gwerrors' statusCoder interface. Property
// misuse is a dispatcher-side programming error, not a client fault,
// so it reports as a 500.
func (e *PropertyError) StatusCode() int { return 500 }

func accessKind(k gwerrors.Kind) string {
	if k == gwerrors.KindPropertyNotWritable {
		return "writable"
	}
	return "readable"
}

// ToGatewayError converts a PropertyError into the stable *gwerrors.Error
// shape so presentError can serialize it like any other dispatch failure.
func (e *PropertyError) ToGatewayError() *gwerrors.Error {
	return gwerrors.New(e.Kind, e.Error()).WithCause(e)
}

func notReadable(name string) *PropertyError {
	return &PropertyError{Kind: gwerrors.KindPropertyNotReadable, Name: name, Valid: FieldNames}
}

func notWritable(name string) *PropertyError {
	return &PropertyError{Kind: gwerrors.KindPropertyNotWritable, Name: name, Valid: FieldNames}
}
