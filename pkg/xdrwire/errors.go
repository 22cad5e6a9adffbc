// Package xdrwire implements RFC 4506 XDR's primitive pack/unpack
// operations: the runtime API the generator's C6/C7 emitters call into.
// All values are big-endian and padded to 4-byte boundaries.
package xdrwire

import (
	"errors"
	"fmt"
)

// ErrShortBuffer is returned when a read would run past the end of input.
var ErrShortBuffer = errors.New("xdrwire: short buffer")

// ErrNegativeLength is returned when a flex/string length prefix decodes to
// a negative or implausibly large value.
var ErrNegativeLength = errors.New("xdrwire: negative or corrupt length prefix")

// Kind distinguishes the wire-level error conditions: invalid_case,
// invalid_named_case, invalid_named_enum, invalid_len.
type Kind int

const (
	// KindInvalidCase is packing a union's default variant, which carries
	// no discriminant and therefore cannot be serialized.
	KindInvalidCase Kind = iota
	// KindInvalidNamedCase is an unpacked discriminant matching neither a
	// case nor a default variant.
	KindInvalidNamedCase
	// KindInvalidNamedEnum is an unpacked value matching no enum member.
	KindInvalidNamedEnum
	// KindInvalidLen is a flex/string length exceeding its declared max.
	KindInvalidLen
)

func (k Kind) String() string {
	switch k {
	case KindInvalidCase:
		return "invalid case"
	case KindInvalidNamedCase:
		return "invalid named case"
	case KindInvalidNamedEnum:
		return "invalid named enum"
	case KindInvalidLen:
		return "invalid length"
	default:
		return "unknown"
	}
}

// Error is the wire runtime's single structured error type, covering every
// condition the generated pack/unpack code can raise.
type Error struct {
	Kind Kind

	// TypeName names the enum/union type involved in KindInvalidNamedCase
	// and KindInvalidNamedEnum.
	TypeName string

	// Discriminant is the offending 32-bit value for KindInvalidCase,
	// KindInvalidNamedCase, and KindInvalidNamedEnum.
	Discriminant int32

	// Len is the offending length for KindInvalidLen.
	Len int

	Cause error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindInvalidCase:
		return fmt.Sprintf("xdrwire: invalid case %d", e.Discriminant)
	case KindInvalidNamedCase:
		return fmt.Sprintf("xdrwire: %s: invalid case %d", e.TypeName, e.Discriminant)
	case KindInvalidNamedEnum:
		return fmt.Sprintf("xdrwire: %s: invalid enum value %d", e.TypeName, e.Discriminant)
	case KindInvalidLen:
		return fmt.Sprintf("xdrwire: invalid length %d", e.Len)
	default:
		return "xdrwire: error"
	}
}

func (e *Error) Unwrap() error { return e.Cause }

// Is reports whether target is an *Error with the same Kind, so callers can
// use errors.Is(err, &Error{Kind: KindInvalidLen}) without matching on every
// field.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

// InvalidCase builds a KindInvalidCase Error.
func InvalidCase(discriminant int32) *Error {
	return &Error{Kind: KindInvalidCase, Discriminant: discriminant}
}

// InvalidNamedCase builds a KindInvalidNamedCase Error.
func InvalidNamedCase(typeName string, discriminant int32) *Error {
	return &Error{Kind: KindInvalidNamedCase, TypeName: typeName, Discriminant: discriminant}
}

// InvalidNamedEnum builds a KindInvalidNamedEnum Error.
func InvalidNamedEnum(typeName string, discriminant int32) *Error {
	return &Error{Kind: KindInvalidNamedEnum, TypeName: typeName, Discriminant: discriminant}
}

// InvalidLen builds a KindInvalidLen Error.
func InvalidLen(length int) *Error {
	return &Error{Kind: KindInvalidLen, Len: length}
}
