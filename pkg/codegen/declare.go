package codegen

import (
	"fmt"
	"sort"
	"strings"

	"github.com/blockberries/xdrgen/pkg/schema"
)

// Declare renders one typespec's Go type declaration (C5, Emit::define):
// an enum as a defined int32 with a const block, a struct as a field
// product, a union as a marker interface plus one concrete type per case,
// an array/flex typespec as a single-field wrapper, or anything else as a
// type alias. The auto-property methods (String/Equal/Clone) are emitted
// alongside, gated on the computed Derives set.
func Declare(st *schema.SymbolTable, name string, ty schema.Type) (string, error) {
	goName := GoTypeName(name)
	derives := schema.DerivesOf(st, name, ty)

	switch t := ty.(type) {
	case *schema.EnumType:
		return declareEnum(st, goName, t, derives)
	case *schema.StructType:
		return declareStruct(st, goName, t, derives)
	case *schema.UnionType:
		return declareUnion(st, goName, t, derives)
	case *schema.ArrayType, *schema.FlexType:
		inner, err := RenderType(st, t)
		if err != nil {
			return "", err
		}
		var b strings.Builder
		fmt.Fprintf(&b, "type %s struct {\n\tValue %s\n}\n", goName, inner)
		return b.String(), nil
	default:
		inner, err := RenderType(st, ty)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("type %s = %s\n", goName, inner), nil
	}
}

// DeclareTypesyn renders a typesyn's Go type alias (always an alias,
// regardless of the aliased type's shape).
func DeclareTypesyn(st *schema.SymbolTable, name string, ty schema.Type) (string, error) {
	inner, err := RenderType(st, ty)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("type %s = %s\n", GoTypeName(name), inner), nil
}

// DeclareConst renders a const definition's 64-bit signed binding.
func DeclareConst(name string, value int64) string {
	return fmt.Sprintf("const %s int64 = %d\n", GoTypeName(name), value)
}

func declareEnum(st *schema.SymbolTable, goName string, e *schema.EnumType, derives schema.Derives) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "type %s int32\n\nconst (\n", goName)

	type member struct {
		name  string
		value int64
	}
	var members []member
	for _, m := range e.Members {
		// Resolved value and implicit-increment handling both live in
		// SymbolTable.Build (registerEnumConsts); look the member up there
		// rather than re-deriving it from m.Value, so declareEnum and
		// unpackEnum (which already keys its switch off this same lookup)
		// agree on exactly which members exist and what they're worth.
		v, _, ok := st.LookupConst(m.Name)
		if !ok {
			continue // unresolved at Build time, already logged there
		}
		if m.Comment != nil {
			fmt.Fprintf(&b, "%s\n", GoComment(m.Comment.Text))
		}
		fieldName := goName + GoTypeName(m.Name)
		fmt.Fprintf(&b, "\t%s %s = %d\n", fieldName, goName, v)
		members = append(members, member{name: fieldName, value: v})
	}
	b.WriteString(")\n")

	if derives.Has(schema.DeriveDebug) {
		fmt.Fprintf(&b, "\nfunc (v %s) String() string {\n\tswitch v {\n", goName)
		for _, m := range members {
			fmt.Fprintf(&b, "\tcase %s:\n\t\treturn %q\n", m.name, m.name)
		}
		b.WriteString("\tdefault:\n\t\treturn \"unknown\"\n\t}\n}\n")
	}
	if derives.Has(schema.DerivePartialEq) {
		fmt.Fprintf(&b, "\nfunc (v %s) Equal(other %s) bool { return v == other }\n", goName, goName)
	}
	if derives.Has(schema.DeriveClone) {
		fmt.Fprintf(&b, "\nfunc (v %s) Clone() %s { return v }\n", goName, goName)
	}
	return b.String(), nil
}

type structField struct {
	goName string
	decl   schema.Decl
	typ    string
}

func structFields(st *schema.SymbolTable, fields []schema.Decl) ([]structField, error) {
	var out []structField
	for _, f := range fields {
		if f.Void {
			continue
		}
		typ, err := RenderType(st, f.Type)
		if err != nil {
			return nil, err
		}
		out = append(out, structField{goName: GoTypeName(f.Name), decl: f, typ: typ})
	}
	return out, nil
}

func declareStruct(st *schema.SymbolTable, goName string, s *schema.StructType, derives schema.Derives) (string, error) {
	fields, err := structFields(st, s.Fields)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	fmt.Fprintf(&b, "type %s struct {\n", goName)
	for _, f := range fields {
		if f.decl.Comment != nil {
			fmt.Fprintf(&b, "%s\n", Indent(GoComment(f.decl.Comment.Text), 1))
		}
		fmt.Fprintf(&b, "\t%s %s\n", f.goName, f.typ)
	}
	b.WriteString("}\n")

	if derives.Has(schema.DeriveDebug) {
		b.WriteString(stringMethod(goName, fields))
	}
	if derives.Has(schema.DerivePartialEq) {
		b.WriteString(reflectEqualMethod(goName))
	}
	if derives.Has(schema.DeriveClone) {
		clone, err := cloneStructMethod(st, goName, fields)
		if err != nil {
			return "", err
		}
		b.WriteString(clone)
	}
	return b.String(), nil
}

func stringMethod(goName string, fields []structField) string {
	var b strings.Builder
	fmt.Fprintf(&b, "\nfunc (v %s) String() string {\n\treturn fmt.Sprintf(\"%s{", goName, goName)
	parts := make([]string, len(fields))
	args := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = f.goName + ":%v"
		args[i] = "v." + f.goName
	}
	b.WriteString(strings.Join(parts, " "))
	b.WriteString("}\"")
	for _, a := range args {
		fmt.Fprintf(&b, ", %s", a)
	}
	b.WriteString(")\n}\n")
	return b.String()
}

// reflectEqualMethod emits an Equal method via reflect.DeepEqual — correct
// for every field shape a struct can hold here (values, slices, pointers,
// nested Equal-supporting types) without a hand-rolled field-by-field walk.
func reflectEqualMethod(goName string) string {
	return fmt.Sprintf("\nfunc (v %s) Equal(other %s) bool { return reflect.DeepEqual(v, other) }\n", goName, goName)
}

func cloneStructMethod(st *schema.SymbolTable, goName string, fields []structField) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "\nfunc (v %s) Clone() %s {\n\tout := v\n", goName, goName)
	for _, f := range fields {
		expr, needsClone, err := cloneExpr(st, f.decl.Type, "v."+f.goName)
		if err != nil {
			return "", err
		}
		if needsClone {
			fmt.Fprintf(&b, "\tout.%s = %s\n", f.goName, expr)
		}
	}
	b.WriteString("\treturn out\n}\n")
	return b.String(), nil
}

// cloneExpr returns a Go expression that deep-copies a value of type ty
// held in varExpr, and whether an assignment is needed at all (a plain
// value field is already copied by the struct's "out := v" above).
func cloneExpr(st *schema.SymbolTable, ty schema.Type, varExpr string) (string, bool, error) {
	switch t := ty.(type) {
	case schema.Prim:
		if t == schema.TOpaque || t == schema.TString {
			// Only reachable as a FlexType.Inner/ArrayType.Inner in this
			// IR; FlexType is handled directly below and ArrayType of
			// Opaque/String collapses to a value array, so a bare Prim
			// here is always a scalar that needs no deep copy.
			return "", false, nil
		}
		return "", false, nil
	case *schema.ArrayType:
		// Go arrays are value types: "out := v" already copied them.
		return "", false, nil
	case *schema.FlexType:
		if prim, ok := t.Inner.(schema.Prim); ok && prim == schema.TString {
			return "", false, nil // strings are immutable
		}
		elemType, err := RenderType(st, t.Inner)
		if err != nil {
			return "", false, err
		}
		return fmt.Sprintf("append([]%s(nil), %s...)", elemType, varExpr), true, nil
	case *schema.OptionType:
		innerType, err := RenderType(st, t.Inner)
		if err != nil {
			return "", false, err
		}
		innerExpr, innerNeeds, err := cloneExpr(st, t.Inner, "(*"+varExpr+")")
		if err != nil {
			return "", false, err
		}
		if !innerNeeds {
			innerExpr = "*" + varExpr
		}
		return fmt.Sprintf("cloneOption(%s, func(x %s) %s { return %s })", varExpr, innerType, innerType, innerExpr), true, nil
	case *schema.IdentType:
		resolved, ok := st.LookupType(t.Name)
		if !ok {
			return "", false, nil // externally supplied: treat as opaque value
		}
		if schema.DerivesOf(st, t.Name, resolved).Has(schema.DeriveClone) {
			return varExpr + ".Clone()", true, nil
		}
		return "", false, nil
	default:
		return "", false, nil
	}
}

// cloneOption is the small shared helper cloneExpr's Option case calls into
// rather than inlining a nil-check at every option-typed field.
const cloneOptionHelper = `
func cloneOption[T any](p *T, clone func(T) T) *T {
	if p == nil {
		return nil
	}
	v := clone(*p)
	return &v
}
`

func declareUnion(st *schema.SymbolTable, goName string, u *schema.UnionType, derives schema.Derives) (string, error) {
	for _, c := range u.Cases {
		if _, err := resolveSelectorCompat(st, u.Selector.Type, c.Case); err != nil {
			return "", err
		}
	}

	var b strings.Builder
	cloneIface := ""
	if derives.Has(schema.DeriveClone) {
		cloneIface = fmt.Sprintf("\n\tClone() %s", goName)
	}
	fmt.Fprintf(&b, "type %s interface {\n\tis%s()%s\n}\n", goName, goName, cloneIface)

	type caseInfo struct {
		caseName string
		decl     schema.Decl
	}
	var cases []caseInfo
	for _, c := range u.Cases {
		cases = append(cases, caseInfo{caseName: goName + schema.AsIdentifier(c.Case), decl: c.Decl})
	}
	if u.Default != nil {
		cases = append(cases, caseInfo{caseName: goName + "Default", decl: *u.Default})
	}

	for _, c := range cases {
		if c.decl.Void {
			fmt.Fprintf(&b, "\ntype %s struct{}\n\nfunc (%s) is%s() {}\n", c.caseName, c.caseName, goName)
		} else {
			typ, err := RenderType(st, c.decl.Type)
			if err != nil {
				return "", err
			}
			fmt.Fprintf(&b, "\ntype %s struct {\n\tValue %s\n}\n\nfunc (%s) is%s() {}\n", c.caseName, typ, c.caseName, goName)
		}
		if derives.Has(schema.DeriveDebug) {
			if c.decl.Void {
				fmt.Fprintf(&b, "\nfunc (v %s) String() string { return %q }\n", c.caseName, c.caseName)
			} else {
				fmt.Fprintf(&b, "\nfunc (v %s) String() string { return fmt.Sprintf(\"%s{%%v}\", v.Value) }\n", c.caseName, c.caseName)
			}
		}
		if derives.Has(schema.DerivePartialEq) {
			b.WriteString(reflectEqualMethod(c.caseName))
		}
		if derives.Has(schema.DeriveClone) {
			if c.decl.Void {
				fmt.Fprintf(&b, "\nfunc (v %s) Clone() %s { return v }\n", c.caseName, goName)
			} else {
				expr, needs, err := cloneExpr(st, c.decl.Type, "v.Value")
				if err != nil {
					return "", err
				}
				if !needs {
					expr = "v.Value"
				}
				fmt.Fprintf(&b, "\nfunc (v %s) Clone() %s { return %s{Value: %s} }\n", c.caseName, goName, c.caseName, expr)
			}
		}
	}

	if derives.Has(schema.DeriveDebug) {
		fmt.Fprintf(&b, "\nfunc %sString(v %s) string {\n\tif s, ok := v.(interface{ String() string }); ok {\n\t\treturn s.String()\n\t}\n\treturn \"%s(?)\"\n}\n", goName, goName, goName)
	}

	sort.Slice(cases, func(i, j int) bool { return cases[i].caseName < cases[j].caseName })
	return b.String(), nil
}
