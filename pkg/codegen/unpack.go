package codegen

import (
	"fmt"
	"strings"

	"github.com/blockberries/xdrgen/pkg/schema"
)

// Unpack renders the Unpack<Name> function for a typespec (C7). Mirrors
// Pack's typespec-shape dispatch; a typesyn or Ident/primitive typespec has
// no generated deserializer of its own (S6).
func Unpack(st *schema.SymbolTable, name string, ty schema.Type) (string, error) {
	goName := GoTypeName(name)
	switch t := ty.(type) {
	case *schema.EnumType:
		return unpackEnum(st, goName, t)
	case *schema.StructType:
		return unpackStruct(st, goName, t)
	case *schema.UnionType:
		return unpackUnion(st, goName, t)
	case *schema.ArrayType:
		return unpackArrayWrapper(st, goName, t)
	case *schema.FlexType:
		return unpackFlexWrapper(st, goName, t)
	default:
		return "", nil
	}
}

func unpackEnum(st *schema.SymbolTable, goName string, e *schema.EnumType) (string, error) {
	var labels []string
	for _, m := range e.Members {
		if _, _, ok := st.LookupConst(m.Name); !ok {
			continue // unresolved at Build time, already logged there
		}
		labels = append(labels, goName+GoTypeName(m.Name))
	}
	var b strings.Builder
	fmt.Fprintf(&b, "func Unpack%s(r *xdrwire.Reader) (%s, int, error) {\n", goName, goName)
	b.WriteString("\tv, n, err := r.UnpackInt()\n\tif err != nil {\n\t\treturn 0, 0, err\n\t}\n")
	fmt.Fprintf(&b, "\tswitch %s(v) {\n\tcase %s:\n\t\treturn %s(v), n, nil\n", goName, strings.Join(labels, ", "), goName)
	fmt.Fprintf(&b, "\tdefault:\n\t\treturn 0, 0, xdrwire.InvalidNamedEnum(%q, v)\n\t}\n}\n", goName)
	return b.String(), nil
}

func unpackStruct(st *schema.SymbolTable, goName string, s *schema.StructType) (string, error) {
	fields, err := structFields(st, s.Fields)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	fmt.Fprintf(&b, "func Unpack%s(r *xdrwire.Reader) (%s, int, error) {\n\tvar out %s\n\ttotal := 0\n", goName, goName, goName)
	for _, f := range fields {
		stmt, err := unpackFieldStmt(st, f.decl.Type, "out."+f.goName)
		if err != nil {
			return "", err
		}
		b.WriteString(stmt)
	}
	b.WriteString("\treturn out, total, nil\n}\n")
	return b.String(), nil
}

// unpackFieldStmt renders a statement block that unpacks ty into dst,
// accumulating consumed bytes into total and returning out/0/err on
// failure. Handles the one field shape unpackCallExpr's plain call-
// expression form can't: a fixed array of elements, which arrives as a
// slice from the runtime and must be copied into the Go array field.
func unpackFieldStmt(st *schema.SymbolTable, ty schema.Type, dst string) (string, error) {
	if a, ok := ty.(*schema.ArrayType); ok {
		if prim, ok := a.Inner.(schema.Prim); ok && (prim == schema.TOpaque || prim == schema.TString) {
			length, err := arrayLength(st, a)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("\t{\n\t\tb, n, err := r.UnpackOpaqueFixed(%d)\n\t\tif err != nil {\n\t\t\treturn out, 0, err\n\t\t}\n\t\tcopy(%s[:], b)\n\t\ttotal += n\n\t}\n", length, dst), nil
		}
		length, err := arrayLength(st, a)
		if err != nil {
			return "", err
		}
		elemType, err := RenderType(st, a.Inner)
		if err != nil {
			return "", err
		}
		inner, err := unpackCallExpr(st, a.Inner)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("\t{\n\t\titems, n, err := xdrwire.UnpackArray(r, %d, func(r *xdrwire.Reader) (%s, int, error) { return %s })\n\t\tif err != nil {\n\t\t\treturn out, 0, err\n\t\t}\n\t\tcopy(%s[:], items)\n\t\ttotal += n\n\t}\n", length, elemType, inner, dst), nil
	}
	expr, err := unpackCallExpr(st, ty)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("\t{\n\t\tv, n, err := %s\n\t\tif err != nil {\n\t\t\treturn out, 0, err\n\t\t}\n\t\t%s = v\n\t\ttotal += n\n\t}\n", expr, dst), nil
}

func unpackArrayWrapper(st *schema.SymbolTable, goName string, a *schema.ArrayType) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "func Unpack%s(r *xdrwire.Reader) (%s, int, error) {\n\tvar out %s\n\ttotal := 0\n", goName, goName, goName)
	stmt, err := unpackFieldStmt(st, a, "out.Value")
	if err != nil {
		return "", err
	}
	b.WriteString(stmt)
	b.WriteString("\treturn out, total, nil\n}\n")
	return b.String(), nil
}

func unpackFlexWrapper(st *schema.SymbolTable, goName string, f *schema.FlexType) (string, error) {
	expr, err := unpackCallExpr(st, f)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("func Unpack%s(r *xdrwire.Reader) (%s, int, error) {\n\tv, n, err := %s\n\tif err != nil {\n\t\treturn %s{}, 0, err\n\t}\n\treturn %s{Value: v}, n, nil\n}\n", goName, goName, expr, goName, goName), nil
}

func unpackUnion(st *schema.SymbolTable, goName string, u *schema.UnionType) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "func Unpack%s(r *xdrwire.Reader) (%s, int, error) {\n", goName, goName)
	b.WriteString("\tdisc, n, err := r.UnpackInt()\n\tif err != nil {\n\t\treturn nil, 0, err\n\t}\n")
	b.WriteString("\tswitch disc {\n")
	for _, c := range u.Cases {
		disc, err := resolveSelectorCompat(st, u.Selector.Type, c.Case)
		if err != nil {
			return "", err
		}
		caseGoName := goName + schema.AsIdentifier(c.Case)
		fmt.Fprintf(&b, "\tcase %d:\n", disc)
		if c.Decl.Void {
			fmt.Fprintf(&b, "\t\treturn %s{}, n, nil\n", caseGoName)
		} else {
			expr, err := unpackCallExpr(st, c.Decl.Type)
			if err != nil {
				return "", err
			}
			fmt.Fprintf(&b, "\t\tv, pn, err := %s\n\t\tif err != nil {\n\t\t\treturn nil, 0, err\n\t\t}\n\t\treturn %s{Value: v}, n + pn, nil\n", expr, caseGoName)
		}
	}
	b.WriteString("\tdefault:\n")
	if u.Default != nil {
		defaultGoName := goName + "Default"
		if u.Default.Void {
			fmt.Fprintf(&b, "\t\treturn %s{}, n, nil\n", defaultGoName)
		} else {
			expr, err := unpackCallExpr(st, u.Default.Type)
			if err != nil {
				return "", err
			}
			fmt.Fprintf(&b, "\t\tv, pn, err := %s\n\t\tif err != nil {\n\t\t\treturn nil, 0, err\n\t\t}\n\t\treturn %s{Value: v}, n + pn, nil\n", expr, defaultGoName)
		}
	} else {
		fmt.Fprintf(&b, "\t\treturn nil, 0, xdrwire.InvalidNamedCase(%q, disc)\n", goName)
	}
	b.WriteString("\t}\n}\n")
	return b.String(), nil
}
