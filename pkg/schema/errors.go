package schema

import "fmt"

// Kind distinguishes the generator's error taxonomy. Each Kind pins down
// which of GenError's payload fields are meaningful.
type Kind int

const (
	// KindParse covers malformed input at any stage: lexing, parsing, or a
	// symbol-table build-time consistency violation (e.g. a duplicate enum
	// value — see DESIGN.md's Open Question decisions).
	KindParse Kind = iota
	// KindIO is an underlying read/write failure.
	KindIO
	// KindUnnamedType is an attempt to render a compound type (enum,
	// struct, union) that was never given a name by C4's type-token
	// emitter, which can only reference named compound types.
	KindUnnamedType
	// KindIncompatSelector is a union case incompatible with its
	// selector's type (e.g. a bool selector paired with a non-TRUE/FALSE
	// case label, or an enum selector paired with a constant that is not
	// a member of that enum).
	KindIncompatSelector
	// KindDiscriminantValueUnknown is a union case whose Value is an
	// Ident with no symbol-table entry.
	KindDiscriminantValueUnknown
	// KindUnimplementedType is an IR shape the emitter refuses to handle.
	KindUnimplementedType
)

func (k Kind) String() string {
	switch k {
	case KindParse:
		return "parse"
	case KindIO:
		return "io"
	case KindUnnamedType:
		return "unnamed type"
	case KindIncompatSelector:
		return "incompatible selector"
	case KindDiscriminantValueUnknown:
		return "discriminant value unknown"
	case KindUnimplementedType:
		return "unimplemented type"
	default:
		return "unknown"
	}
}

// GenError is the generator's single structured error type. Which of its
// fields are populated depends on Kind — this mirrors the original Rust
// implementation's thiserror enum (original_source/xdrgen/src/error.rs),
// translated to one Go struct carrying a Kind tag since Go has no
// payload-carrying sum type.
type GenError struct {
	Kind Kind

	// Message carries the free-form detail for KindParse and KindIO.
	Message string

	// Type names the offending type for KindUnnamedType and
	// KindUnimplementedType.
	Type string

	// Selector and Case describe the mismatch for KindIncompatSelector.
	Selector string
	Case     string

	// Value is the unresolved discriminant identifier for
	// KindDiscriminantValueUnknown.
	Value string

	// Position, if non-zero, locates the offending construct in source.
	Position Position

	// Cause, if non-nil, is the underlying error (e.g. an *os.PathError
	// for KindIO).
	Cause error
}

func (e *GenError) Error() string {
	prefix := ""
	if e.Position.Filename != "" || e.Position.Line != 0 {
		prefix = e.Position.String() + ": "
	}
	switch e.Kind {
	case KindParse:
		return fmt.Sprintf("%s%s", prefix, e.Message)
	case KindIO:
		if e.Cause != nil {
			return fmt.Sprintf("%sio error: %s: %v", prefix, e.Message, e.Cause)
		}
		return fmt.Sprintf("%sio error: %s", prefix, e.Message)
	case KindUnnamedType:
		return fmt.Sprintf("%scannot render unnamed type: %s", prefix, e.Type)
	case KindIncompatSelector:
		return fmt.Sprintf("%scase %s incompatible with selector %s", prefix, e.Case, e.Selector)
	case KindDiscriminantValueUnknown:
		return fmt.Sprintf("%sdiscriminant value unknown: %s", prefix, e.Value)
	case KindUnimplementedType:
		return fmt.Sprintf("%sunimplemented type: %s", prefix, e.Type)
	default:
		return fmt.Sprintf("%sgenerator error", prefix)
	}
}

func (e *GenError) Unwrap() error { return e.Cause }

// ParseErr builds a KindParse GenError.
func ParseErr(pos Position, format string, args ...any) *GenError {
	return &GenError{Kind: KindParse, Position: pos, Message: fmt.Sprintf(format, args...)}
}

// IOErr wraps an underlying I/O failure as a KindIO GenError.
func IOErr(message string, cause error) *GenError {
	return &GenError{Kind: KindIO, Message: message, Cause: cause}
}

// UnnamedTypeErr builds a KindUnnamedType GenError.
func UnnamedTypeErr(ty Type) *GenError {
	return &GenError{Kind: KindUnnamedType, Type: ty.String()}
}

// IncompatSelectorErr builds a KindIncompatSelector GenError.
func IncompatSelectorErr(selector Type, caseValue Value) *GenError {
	return &GenError{
		Kind:     KindIncompatSelector,
		Selector: selector.String(),
		Case:     caseValue.String(),
	}
}

// DiscriminantValueUnknownErr builds a KindDiscriminantValueUnknown GenError.
func DiscriminantValueUnknownErr(v Value) *GenError {
	return &GenError{Kind: KindDiscriminantValueUnknown, Value: v.String()}
}

// UnimplementedTypeErr builds a KindUnimplementedType GenError.
func UnimplementedTypeErr(ty Type) *GenError {
	return &GenError{Kind: KindUnimplementedType, Type: ty.String()}
}
