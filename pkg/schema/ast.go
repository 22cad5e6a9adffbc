// Package schema holds the intermediate representation of an XDR
// interface description: the AST consumed from the parser (Value, Type,
// Decl, EnumDefn, UnionCase, Defn), the symbol table built from it, and the
// derivation analyzer that computes which auto-properties a generated Go
// type can support.
package schema

import "fmt"

// Position marks a location in an XDR source file.
type Position struct {
	Filename string
	Line     int
	Column   int
	Offset   int
}

func (p Position) String() string {
	if p.Filename == "" {
		return fmt.Sprintf("%d:%d", p.Line, p.Column)
	}
	return fmt.Sprintf("%s:%d:%d", p.Filename, p.Line, p.Column)
}

// Comment is a doc-comment attached to an enum member, struct field, or
// union case.
type Comment struct {
	Position Position
	Text     string
}

// Value is a compile-time scalar: an enum value, array length, union
// discriminant case, or a reference to a named constant.
type Value interface {
	isValue()
	String() string
}

// ConstValue is a literal integer value. It may be negative.
type ConstValue int64

func (ConstValue) isValue() {}

func (v ConstValue) String() string { return fmt.Sprintf("%d", int64(v)) }

// AsIdentifier renders the value as a lexically valid Go label, suitable
// for naming union-case-derived variant types: Const(n) becomes
// "ConstN" for n >= 0, "ConstNeg<n>" for n < 0.
func (v ConstValue) AsIdentifier() string {
	if v >= 0 {
		return fmt.Sprintf("Const%d", int64(v))
	}
	return fmt.Sprintf("ConstNeg%d", -int64(v))
}

// IdentValue is a reference to a named constant, resolved through the
// symbol table.
type IdentValue string

func (IdentValue) isValue() {}

func (v IdentValue) String() string { return string(v) }

// AsIdentifier renders the identifier as a lexically valid Go label.
func (v IdentValue) AsIdentifier() string {
	return EscapeIdent(string(v))
}

// AsIdentifier renders any Value as a lexically valid Go label, dispatching
// on its concrete kind. Used by the union-case declaration emitter to name
// generated variant types.
func AsIdentifier(v Value) string {
	switch vv := v.(type) {
	case ConstValue:
		return vv.AsIdentifier()
	case IdentValue:
		return vv.AsIdentifier()
	default:
		return v.String()
	}
}

// Type is a closed sum over XDR's type grammar.
type Type interface {
	isType()
	String() string
}

// Prim is a primitive scalar type or array-element marker.
type Prim int

const (
	TInt Prim = iota
	TUInt
	THyper
	TUHyper
	TFloat
	TDouble
	TQuadruple
	TBool
	TOpaque
	TString
)

func (Prim) isType() {}

func (p Prim) String() string {
	switch p {
	case TInt:
		return "int"
	case TUInt:
		return "unsigned int"
	case THyper:
		return "hyper"
	case TUHyper:
		return "unsigned hyper"
	case TFloat:
		return "float"
	case TDouble:
		return "double"
	case TQuadruple:
		return "quadruple"
	case TBool:
		return "bool"
	case TOpaque:
		return "opaque"
	case TString:
		return "string"
	default:
		return "<unknown prim>"
	}
}

// IsPrim reports whether p is one of the eight scalar primitives (i.e. not
// an array-element marker like TOpaque/TString).
func (p Prim) IsPrim() bool {
	switch p {
	case TInt, TUInt, THyper, TUHyper, TFloat, TDouble, TQuadruple, TBool:
		return true
	default:
		return false
	}
}

// EnumDefn is one member of an Enum type: a name, an optional explicit
// value, and an optional doc-comment.
type EnumDefn struct {
	Name    string
	Value   Value // nil if omitted
	Comment *Comment
}

// EnumType is a named-constant set. Members without an explicit Value
// default to the preceding member's resolved value + 1, starting from an
// implicit previous value of -1.
type EnumType struct {
	Members []EnumDefn
}

func (*EnumType) isType() {}

func (e *EnumType) String() string {
	return fmt.Sprintf("enum{%d members}", len(e.Members))
}

// Decl is a single declaration inside a struct, union case, or union
// selector: either Void (no payload) or Named (a field with a type and
// optional doc-comment).
type Decl struct {
	Void    bool
	Name    string // empty iff Void
	Type    Type   // nil iff Void
	Comment *Comment
}

// StructType is an ordered product of named fields.
type StructType struct {
	Fields []Decl
}

func (*StructType) isType() {}

func (s *StructType) String() string {
	return fmt.Sprintf("struct{%d fields}", len(s.Fields))
}

// UnionCase pairs a discriminant Value with the Decl it selects.
type UnionCase struct {
	Case Value
	Decl Decl
}

// UnionType is a tagged union: a selector Decl (the discriminant), a list
// of cases, and an optional default case.
type UnionType struct {
	Selector Decl
	Cases    []UnionCase
	Default  *Decl // nil if no default
}

func (*UnionType) isType() {}

func (u *UnionType) String() string {
	return fmt.Sprintf("union{%d cases}", len(u.Cases))
}

// OptionType is XDR's optional-data type: serialized as a 0/1 presence
// flag followed by the inner value when present.
type OptionType struct {
	Inner Type
}

func (*OptionType) isType() {}

func (o *OptionType) String() string { return fmt.Sprintf("%s*", o.Inner) }

// ArrayType is a fixed-length array of Inner, of Length elements.
type ArrayType struct {
	Inner  Type
	Length Value
}

func (*ArrayType) isType() {}

func (a *ArrayType) String() string { return fmt.Sprintf("%s[%s]", a.Inner, a.Length) }

// FlexType is a variable-length array of Inner, with an optional upper
// bound on its length.
type FlexType struct {
	Inner Type
	Max   Value // nil if unbounded
}

func (*FlexType) isType() {}

func (f *FlexType) String() string {
	if f.Max == nil {
		return fmt.Sprintf("%s<>", f.Inner)
	}
	return fmt.Sprintf("%s<%s>", f.Inner, f.Max)
}

// IdentType is a reference to another named type (a typespec or typesyn).
// Derives, if non-nil, is a precomputed override for the derivation
// analyzer — an escape hatch for externally declared types (xdr_header
// definitions resolved from a separately compiled module).
type IdentType struct {
	Name    string
	Derives *Derives
}

func (*IdentType) isType() {}

func (i *IdentType) String() string { return i.Name }

// Defn is a top-level binding produced by the parser.
type Defn interface {
	isDefn()
	DefnName() string
}

// TypespecDefn introduces a name owning structure (enum/struct/union, or a
// primitive/array/flex/ident alias that is nonetheless a typespec rather
// than a typesyn).
type TypespecDefn struct {
	Name string
	Type Type
	// Header marks a definition that came from the optional xdr_header
	// input: registered in the symbol table, never emitted.
	Header bool
}

func (*TypespecDefn) isDefn()            {}
func (t *TypespecDefn) DefnName() string { return t.Name }

// TypesynDefn is a type alias.
type TypesynDefn struct {
	Name   string
	Type   Type
	Header bool
}

func (*TypesynDefn) isDefn()            {}
func (t *TypesynDefn) DefnName() string { return t.Name }

// ConstDefn is a named 64-bit signed constant.
type ConstDefn struct {
	Name   string
	Value  int64
	Header bool
}

func (*ConstDefn) isDefn()            {}
func (c *ConstDefn) DefnName() string { return c.Name }

// ProcedureDefn captures an RPC program/version/procedure declaration.
// XDR's procedural layer is parsed but never emitted or type-checked — a
// Non-goal carried unchanged from the distilled spec.
type ProcedureDefn struct {
	Name string
}

func (*ProcedureDefn) isDefn()            {}
func (p *ProcedureDefn) DefnName() string { return p.Name }

// goKeywords is the set of reserved words EscapeIdent guards against.
var goKeywords = map[string]bool{
	"break": true, "default": true, "func": true, "interface": true,
	"select": true, "case": true, "defer": true, "go": true, "map": true,
	"struct": true, "chan": true, "else": true, "goto": true, "package": true,
	"switch": true, "const": true, "fallthrough": true, "if": true,
	"range": true, "type": true, "continue": true, "for": true,
	"import": true, "return": true, "var": true,
}

// EscapeIdent appends a trailing underscore to name if it collides with a
// Go reserved word; otherwise returns name unchanged.
func EscapeIdent(name string) string {
	if goKeywords[name] {
		return name + "_"
	}
	return name
}
