package schema

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrSchema is matched (via errors.Is) by every load-time failure.
var ErrSchema = errors.New("schema error")

// Error describes a malformed or unresolved type definition.
type Error struct {
	Type   string
	Field  string
	Reason string
	// Err is the underlying cause, if any.
	Err error
}

func (e *Error) Error() string {
	var loc string
	switch {
	case e.Type != "" && e.Field != "":
		loc = fmt.Sprintf("type %q field %q: ", e.Type, e.Field)
	case e.Type != "":
		loc = fmt.Sprintf("type %q: ", e.Type)
	}
	msg := "schema: " + loc + e.Reason
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Is reports whether target is ErrSchema.
func (e *Error) Is(target error) bool {
	return target == ErrSchema
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

func typeErr(t, reason string, args ...interface{}) *Error {
	return &Error{Type: t, Reason: fmt.Sprintf(reason, args...)}
}

func fieldErr(t, f, reason string, args ...interface{}) *Error {
	return &Error{Type: t, Field: f, Reason: fmt.Sprintf(reason, args...)}
}
