package codegen

import (
	"fmt"
	"strconv"

	log "github.com/golang/glog"

	"github.com/blockberries/xdrgen/pkg/schema"
)

// flexMaxLiteral renders a Flex/Array bound Value as a Go int literal for
// the runtime's max parameter, where -1 means unbounded. An unresolvable
// bound is logged and treated as unbounded rather than failing generation
// — only a fixed array's own length is generation-fatal (it fixes the Go
// type itself); a flex bound is just a runtime check.
func flexMaxLiteral(st *schema.SymbolTable, max schema.Value) string {
	if max == nil {
		return "-1"
	}
	n, ok := st.LookupValue(max)
	if !ok {
		log.Warningf("codegen: unresolved flex bound %s, treating as unbounded", max)
		return "-1"
	}
	return strconv.FormatInt(n, 10)
}

// packCallExpr returns a Go expression, a call returning (int, error), that
// packs a value of type ty held in varExpr (C6, Emitpack::pack).
func packCallExpr(st *schema.SymbolTable, ty schema.Type, varExpr string) (string, error) {
	switch t := ty.(type) {
	case schema.Prim:
		return packPrimExpr(t, varExpr)
	case *schema.ArrayType:
		return packArrayExpr(st, t, varExpr)
	case *schema.FlexType:
		return packFlexExpr(st, t, varExpr)
	case *schema.OptionType:
		innerType, err := RenderType(st, t.Inner)
		if err != nil {
			return "", err
		}
		inner, err := packCallExpr(st, t.Inner, "x")
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("xdrwire.PackOption(w, %s, func(w *xdrwire.Writer, x %s) (int, error) { return %s })", varExpr, innerType, inner), nil
	case *schema.IdentType:
		return packIdentExpr(st, t, varExpr)
	default:
		return "", schema.UnnamedTypeErr(ty)
	}
}

func packPrimExpr(p schema.Prim, varExpr string) (string, error) {
	switch p {
	case schema.TInt:
		return fmt.Sprintf("w.PackInt(%s)", varExpr), nil
	case schema.TUInt:
		return fmt.Sprintf("w.PackUint(%s)", varExpr), nil
	case schema.THyper:
		return fmt.Sprintf("w.PackHyper(%s)", varExpr), nil
	case schema.TUHyper:
		return fmt.Sprintf("w.PackUHyper(%s)", varExpr), nil
	case schema.TFloat:
		return fmt.Sprintf("w.PackFloat(%s)", varExpr), nil
	case schema.TDouble:
		return fmt.Sprintf("w.PackDouble(%s)", varExpr), nil
	case schema.TQuadruple:
		return fmt.Sprintf("w.PackQuadruple(%s)", varExpr), nil
	case schema.TBool:
		return fmt.Sprintf("w.PackBool(%s)", varExpr), nil
	default:
		return "", schema.UnimplementedTypeErr(p)
	}
}

func packArrayExpr(st *schema.SymbolTable, a *schema.ArrayType, varExpr string) (string, error) {
	if prim, ok := a.Inner.(schema.Prim); ok && (prim == schema.TOpaque || prim == schema.TString) {
		return fmt.Sprintf("w.PackOpaqueFixed(%s[:])", varExpr), nil
	}
	elemType, err := RenderType(st, a.Inner)
	if err != nil {
		return "", err
	}
	inner, err := packCallExpr(st, a.Inner, "x")
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("xdrwire.PackArray(w, %s[:], func(w *xdrwire.Writer, x %s) (int, error) { return %s })", varExpr, elemType, inner), nil
}

func packFlexExpr(st *schema.SymbolTable, f *schema.FlexType, varExpr string) (string, error) {
	max := flexMaxLiteral(st, f.Max)
	if prim, ok := f.Inner.(schema.Prim); ok {
		if prim == schema.TString {
			return fmt.Sprintf("w.PackString(%s, %s)", varExpr, max), nil
		}
		if prim == schema.TOpaque {
			return fmt.Sprintf("w.PackOpaqueFlex(%s, %s)", varExpr, max), nil
		}
	}
	elemType, err := RenderType(st, f.Inner)
	if err != nil {
		return "", err
	}
	inner, err := packCallExpr(st, f.Inner, "x")
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("xdrwire.PackFlex(w, %s, %s, func(w *xdrwire.Writer, x %s) (int, error) { return %s })", varExpr, max, elemType, inner), nil
}

func packIdentExpr(st *schema.SymbolTable, id *schema.IdentType, varExpr string) (string, error) {
	resolved, ok := st.LookupType(id.Name)
	if !ok {
		// Externally supplied: the user is expected to provide a
		// Pack<Name> function following the generator's own convention.
		return fmt.Sprintf("Pack%s(w, %s)", GoTypeName(id.Name), varExpr), nil
	}
	if st.IsTypespec(id.Name) {
		return fmt.Sprintf("Pack%s(w, %s)", GoTypeName(id.Name), varExpr), nil
	}
	// Typesyn: a transparent Go alias, so varExpr already holds the
	// aliased representation — recurse without an intermediate call.
	return packCallExpr(st, resolved, varExpr)
}

// unpackCallExpr returns a Go expression, a call returning (T, int, error),
// that unpacks a value of type ty (C7, Emitpack::unpack).
func unpackCallExpr(st *schema.SymbolTable, ty schema.Type) (string, error) {
	switch t := ty.(type) {
	case schema.Prim:
		return unpackPrimExpr(t)
	case *schema.FlexType:
		return unpackFlexExpr(st, t)
	case *schema.OptionType:
		innerType, err := RenderType(st, t.Inner)
		if err != nil {
			return "", err
		}
		inner, err := unpackCallExpr(st, t.Inner)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("xdrwire.UnpackOption(r, func(r *xdrwire.Reader) (%s, int, error) { return %s })", innerType, inner), nil
	case *schema.IdentType:
		return unpackIdentExpr(st, t)
	default:
		return "", schema.UnnamedTypeErr(ty)
	}
}

func unpackPrimExpr(p schema.Prim) (string, error) {
	switch p {
	case schema.TInt:
		return "r.UnpackInt()", nil
	case schema.TUInt:
		return "r.UnpackUint()", nil
	case schema.THyper:
		return "r.UnpackHyper()", nil
	case schema.TUHyper:
		return "r.UnpackUHyper()", nil
	case schema.TFloat:
		return "r.UnpackFloat()", nil
	case schema.TDouble:
		return "r.UnpackDouble()", nil
	case schema.TQuadruple:
		return "r.UnpackQuadruple()", nil
	case schema.TBool:
		return "r.UnpackBool()", nil
	default:
		return "", schema.UnimplementedTypeErr(p)
	}
}

func unpackFlexExpr(st *schema.SymbolTable, f *schema.FlexType) (string, error) {
	max := flexMaxLiteral(st, f.Max)
	if prim, ok := f.Inner.(schema.Prim); ok {
		if prim == schema.TString {
			return fmt.Sprintf("r.UnpackString(%s)", max), nil
		}
		if prim == schema.TOpaque {
			return fmt.Sprintf("r.UnpackOpaqueFlex(%s)", max), nil
		}
	}
	elemType, err := RenderType(st, f.Inner)
	if err != nil {
		return "", err
	}
	inner, err := unpackCallExpr(st, f.Inner)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("xdrwire.UnpackFlex(r, %s, func(r *xdrwire.Reader) (%s, int, error) { return %s })", max, elemType, inner), nil
}

func unpackIdentExpr(st *schema.SymbolTable, id *schema.IdentType) (string, error) {
	resolved, ok := st.LookupType(id.Name)
	if !ok {
		return fmt.Sprintf("Unpack%s(r)", GoTypeName(id.Name)), nil
	}
	if st.IsTypespec(id.Name) {
		return fmt.Sprintf("Unpack%s(r)", GoTypeName(id.Name)), nil
	}
	return unpackCallExpr(st, resolved)
}

// resolveSelectorCompat validates a union case Value against its selector's
// type, and returns the case's resolved
// integer discriminant (used by both the unpack emitter's switch and the
// compatibility check itself, since an Ident case is only valid once
// resolved).
func resolveSelectorCompat(st *schema.SymbolTable, selector schema.Type, caseValue schema.Value) (int64, error) {
	switch sel := selector.(type) {
	case schema.Prim:
		switch sel {
		case schema.TBool:
			id, ok := caseValue.(schema.IdentValue)
			if !ok || (string(id) != "TRUE" && string(id) != "FALSE") {
				return 0, schema.IncompatSelectorErr(selector, caseValue)
			}
			if string(id) == "TRUE" {
				return 1, nil
			}
			return 0, nil
		case schema.TInt, schema.THyper:
			cv, ok := caseValue.(schema.ConstValue)
			if !ok {
				return 0, schema.IncompatSelectorErr(selector, caseValue)
			}
			return int64(cv), nil
		case schema.TUInt, schema.TUHyper:
			cv, ok := caseValue.(schema.ConstValue)
			if !ok || cv < 0 {
				return 0, schema.IncompatSelectorErr(selector, caseValue)
			}
			return int64(cv), nil
		default:
			return 0, schema.IncompatSelectorErr(selector, caseValue)
		}
	case *schema.IdentType:
		id, ok := caseValue.(schema.IdentValue)
		if !ok {
			return 0, schema.IncompatSelectorErr(selector, caseValue)
		}
		value, scope, found := st.LookupConst(string(id))
		if !found {
			return 0, schema.DiscriminantValueUnknownErr(caseValue)
		}
		if scope != sel.Name {
			return 0, schema.IncompatSelectorErr(selector, caseValue)
		}
		return value, nil
	default:
		return 0, schema.IncompatSelectorErr(selector, caseValue)
	}
}
