package value

import (
	"errors"
	"fmt"
)

// Sentinels matched by errors.Is against the typed errors below.
var (
	ErrUnknownField   = errors.New("unknown field")
	ErrOverflow       = errors.New("value overflows field")
	ErrBufferTooSmall = errors.New("buffer too small")
	ErrVariant        = errors.New("variant branch unavailable")
	ErrInvalidValue   = errors.New("invalid value")
)

// UnknownFieldError is returned when a slot name isn't declared by the type.
type UnknownFieldError struct {
	Type  string
	Field string
}

func (e *UnknownFieldError) Error() string {
	return fmt.Sprintf("value: type %q has no field %q", e.Type, e.Field)
}

// Is implements errors.Is support.
func (e *UnknownFieldError) Is(target error) bool { return target == ErrUnknownField }

// OverflowError is returned when a scalar doesn't fit its declared width.
// Values are never truncated silently.
type OverflowError struct {
	Type   string
	Field  string
	Bits   int
	Signed bool
	Value  string
}

func (e *OverflowError) Error() string {
	sign := "unsigned"
	if e.Signed {
		sign = "signed"
	}
	return fmt.Sprintf("value: %s does not fit %s %d-bit field %s.%s",
		e.Value, sign, e.Bits, e.Type, e.Field)
}

// Is implements errors.Is support.
func (e *OverflowError) Is(target error) bool { return target == ErrOverflow }

// BufferTooSmallError is returned when a write destination is shorter than
// the instance or a read source runs out before a fixed-size field.
type BufferTooSmallError struct {
	Type string
	Need int
	Have int
	// Err is the underlying reader error, if any.
	Err error
}

func (e *BufferTooSmallError) Error() string {
	msg := fmt.Sprintf("value: %s needs %d bytes, buffer has %d", e.Type, e.Need, e.Have)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Is implements errors.Is support.
func (e *BufferTooSmallError) Is(target error) bool { return target == ErrBufferTooSmall }

// Unwrap returns the underlying reader error.
func (e *BufferTooSmallError) Unwrap() error { return e.Err }

// VariantError is returned when a variant field has no branch for the
// current discriminant, or holds a branch the discriminant doesn't select.
type VariantError struct {
	Type         string
	Field        string
	Discriminant string
	Reason       string
}

func (e *VariantError) Error() string {
	return fmt.Sprintf("value: variant %s.%s (discriminant %s): %s",
		e.Type, e.Field, e.Discriminant, e.Reason)
}

// Is implements errors.Is support.
func (e *VariantError) Is(target error) bool { return target == ErrVariant }

func invalidValue(typ, field string, v interface{}, why string) error {
	return fmt.Errorf("%w: cannot assign %T to %s.%s: %s", ErrInvalidValue, v, typ, field, why)
}
