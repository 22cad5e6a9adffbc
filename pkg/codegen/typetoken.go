package codegen

import (
	"strconv"

	"github.com/blockberries/xdrgen/pkg/schema"
)

// GoTypeName renders an XDR typespec/typesyn/const/enum-member name as an
// exported Go identifier: PascalCase, with a trailing underscore appended
// if it collides with a Go keyword (schema.EscapeIdent runs last, after
// casing, since casing can itself produce a keyword collision that the raw
// XDR name didn't have).
func GoTypeName(name string) string {
	return schema.EscapeIdent(ToPascalCase(name))
}

// RenderType renders a Type as a Go type reference (C4). Compound types
// (enum/struct/union) have no inline rendering — encountering one directly
// is an UnnamedTypeErr, since only a Typespec binds them to a name.
func RenderType(st *schema.SymbolTable, ty schema.Type) (string, error) {
	switch t := ty.(type) {
	case schema.Prim:
		return renderPrim(t)
	case *schema.EnumType, *schema.StructType, *schema.UnionType:
		return "", schema.UnnamedTypeErr(ty)
	case *schema.OptionType:
		inner, err := RenderType(st, t.Inner)
		if err != nil {
			return "", err
		}
		return "*" + inner, nil
	case *schema.ArrayType:
		return renderArray(st, t)
	case *schema.FlexType:
		return renderFlex(st, t)
	case *schema.IdentType:
		return GoTypeName(t.Name), nil
	default:
		return "", schema.UnimplementedTypeErr(ty)
	}
}

func renderPrim(p schema.Prim) (string, error) {
	switch p {
	case schema.TInt:
		return "int32", nil
	case schema.TUInt:
		return "uint32", nil
	case schema.THyper:
		return "int64", nil
	case schema.TUHyper:
		return "uint64", nil
	case schema.TFloat:
		return "float32", nil
	case schema.TDouble:
		return "float64", nil
	case schema.TQuadruple:
		// No native 128-bit float in Go; rendered as its 16 raw bytes
		// (pack/unpack move them verbatim).
		return "[16]byte", nil
	case schema.TBool:
		return "bool", nil
	case schema.TOpaque:
		return "[]byte", nil
	case schema.TString:
		return "string", nil
	default:
		return "", schema.UnimplementedTypeErr(p)
	}
}

// renderArray renders a fixed-length array. Opaque/String element arrays
// collapse to a plain fixed byte array, matching XDR's own treatment of
// fixed-length opaque data as a raw byte sequence.
func renderArray(st *schema.SymbolTable, a *schema.ArrayType) (string, error) {
	length, err := arrayLength(st, a)
	if err != nil {
		return "", err
	}
	if prim, ok := a.Inner.(schema.Prim); ok && (prim == schema.TOpaque || prim == schema.TString) {
		return fmtArray(length, "byte"), nil
	}
	inner, err := RenderType(st, a.Inner)
	if err != nil {
		return "", err
	}
	return fmtArray(length, inner), nil
}

// renderFlex renders a variable-length array. Flex(String,_) and
// Flex(Opaque,_) collapse to the owned scalar container (string / []byte);
// any other element renders as a slice.
func renderFlex(st *schema.SymbolTable, f *schema.FlexType) (string, error) {
	if prim, ok := f.Inner.(schema.Prim); ok {
		if prim == schema.TString {
			return "string", nil
		}
		if prim == schema.TOpaque {
			return "[]byte", nil
		}
	}
	inner, err := RenderType(st, f.Inner)
	if err != nil {
		return "", err
	}
	return "[]" + inner, nil
}

func fmtArray(length int64, elem string) string {
	return "[" + strconv.FormatInt(length, 10) + "]" + elem
}

// arrayLength resolves an array's declared Length to an integer, failing
// with UnimplementedTypeErr if it cannot be resolved (an unresolvable fixed
// length makes the Go array type itself unrenderable, unlike a Flex max
// bound which is only a runtime check).
func arrayLength(st *schema.SymbolTable, a *schema.ArrayType) (int64, error) {
	n, ok := st.LookupValue(a.Length)
	if !ok {
		return 0, schema.UnimplementedTypeErr(a)
	}
	return n, nil
}
