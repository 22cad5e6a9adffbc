package codegen

import (
	"fmt"
	"strings"

	"github.com/blockberries/xdrgen/pkg/schema"
)

// Pack renders the Pack<Name> function for a typespec (C6). Only the
// structural typespec shapes own a generated serializer — a typesyn is a
// transparent alias and an Ident/primitive typespec packs via the
// referenced or primitive runtime call inline at every call site (S6).
func Pack(st *schema.SymbolTable, name string, ty schema.Type) (string, error) {
	goName := GoTypeName(name)
	switch t := ty.(type) {
	case *schema.EnumType:
		return packEnum(goName), nil
	case *schema.StructType:
		return packStruct(st, goName, t)
	case *schema.UnionType:
		return packUnion(st, goName, t)
	case *schema.ArrayType, *schema.FlexType:
		inner, err := packCallExpr(st, ty, "v.Value")
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("func Pack%s(w *xdrwire.Writer, v %s) (int, error) {\n\treturn %s\n}\n", goName, goName, inner), nil
	default:
		return "", nil
	}
}

func packEnum(goName string) string {
	return fmt.Sprintf("func Pack%s(w *xdrwire.Writer, v %s) (int, error) {\n\treturn w.PackInt(int32(v))\n}\n", goName, goName)
}

func packStruct(st *schema.SymbolTable, goName string, s *schema.StructType) (string, error) {
	fields, err := structFields(st, s.Fields)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	fmt.Fprintf(&b, "func Pack%s(w *xdrwire.Writer, v %s) (int, error) {\n", goName, goName)
	b.WriteString("\ttotal := 0\n")
	for _, f := range fields {
		expr, err := packCallExpr(st, f.decl.Type, "v."+f.goName)
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&b, "\t{\n\t\tn, err := %s\n\t\tif err != nil {\n\t\t\treturn 0, err\n\t\t}\n\t\ttotal += n\n\t}\n", expr)
	}
	b.WriteString("\treturn total, nil\n}\n")
	return b.String(), nil
}

func packUnion(st *schema.SymbolTable, goName string, u *schema.UnionType) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "func Pack%s(w *xdrwire.Writer, v %s) (int, error) {\n", goName, goName)
	b.WriteString("\tswitch x := v.(type) {\n")
	for _, c := range u.Cases {
		disc, err := resolveSelectorCompat(st, u.Selector.Type, c.Case)
		if err != nil {
			return "", err
		}
		caseGoName := goName + schema.AsIdentifier(c.Case)
		fmt.Fprintf(&b, "\tcase %s:\n", caseGoName)
		fmt.Fprintf(&b, "\t\tn, err := w.PackInt(%d)\n\t\tif err != nil {\n\t\t\treturn 0, err\n\t\t}\n", disc)
		if !c.Decl.Void {
			expr, err := packCallExpr(st, c.Decl.Type, "x.Value")
			if err != nil {
				return "", err
			}
			fmt.Fprintf(&b, "\t\tpn, err := %s\n\t\tif err != nil {\n\t\t\treturn 0, err\n\t\t}\n\t\treturn n + pn, nil\n", expr)
		} else {
			b.WriteString("\t\treturn n, nil\n")
		}
	}
	if u.Default != nil {
		fmt.Fprintf(&b, "\tcase %sDefault:\n\t\treturn 0, xdrwire.InvalidCase(-1)\n", goName)
	}
	b.WriteString("\tdefault:\n\t\treturn 0, xdrwire.InvalidCase(-1)\n\t}\n}\n")
	return b.String(), nil
}
