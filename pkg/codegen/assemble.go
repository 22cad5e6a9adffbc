package codegen

import (
	"fmt"
	"strings"

	"github.com/blockberries/xdrgen/pkg/schema"
)

// xdrwireImportPath is the runtime package every generated file imports for
// its Pack/Unpack primitives.
const xdrwireImportPath = "github.com/blockberries/xdrgen/pkg/xdrwire"

// Options configures the assembled output file: the package/banner
// metadata, plus the xdr_header, exclude_defs, tagging, and prologue hooks.
type Options struct {
	// Infile names the source file for the generated-code banner.
	Infile string
	// Package is the emitted file's package clause.
	Package string
	// Prologue is a verbatim string inserted after the package clause and
	// banner, for import blocks or build tags the caller wants to own.
	Prologue string
	// ExcludeDefs drops any rendered fragment naming one of these
	// definitions.
	ExcludeDefs []string
	// Tagging, if non-nil, attaches a verbatim fragment to typespecs that
	// follow a matching top-level const.
	Tagging *TaggingOptions
}

// Assemble renders the full generated Go source file for defns (C8):
// constants, then type definitions (with tagging attached), then type
// synonyms, then pack implementations, then unpack implementations — each
// pass over symbol-table names in sorted order, skipping xdr_header-origin
// definitions and anything named in ExcludeDefs.
func Assemble(defns []schema.Defn, st *schema.SymbolTable, opts Options) (string, error) {
	var consts, types, typesyns, packers, unpackers strings.Builder

	for _, name := range st.ConstNames() {
		if st.IsHeader(name) {
			continue
		}
		if _, scope, _ := st.LookupConst(name); scope != "" {
			continue // enum member, declared inside its enum's const block
		}
		value, _ := st.ConstValueFor(name)
		fragment := DeclareConst(name, value)
		if FragmentExcluded(fragment, opts.ExcludeDefs) {
			continue
		}
		consts.WriteString(fragment)
		consts.WriteString("\n")
	}

	var taggedTypes map[string]string
	if opts.Tagging != nil {
		excluded := func(name string) bool { return st.IsHeader(name) || contains(opts.ExcludeDefs, name) }
		taggedTypes = TaggedTypes(opts.Tagging, defns, excluded)
	}

	typespecNames := st.TypespecNames()
	for _, name := range typespecNames {
		if st.IsHeader(name) {
			continue
		}
		ty, _ := st.Typespec(name)
		fragment, err := Declare(st, name, ty)
		if err != nil {
			return "", err
		}
		if FragmentExcluded(fragment, opts.ExcludeDefs) {
			continue
		}
		types.WriteString(fragment)
		types.WriteString("\n")
		if tag, ok := taggedTypes[name]; ok {
			types.WriteString(tag)
			types.WriteString("\n")
		}
	}

	for _, name := range st.TypesynNames() {
		if st.IsHeader(name) {
			continue
		}
		ty, _ := st.Typesyn(name)
		fragment, err := DeclareTypesyn(st, name, ty)
		if err != nil {
			return "", err
		}
		if FragmentExcluded(fragment, opts.ExcludeDefs) {
			continue
		}
		typesyns.WriteString(fragment)
		typesyns.WriteString("\n")
	}

	for _, name := range typespecNames {
		if st.IsHeader(name) {
			continue
		}
		ty, _ := st.Typespec(name)
		fragment, err := Pack(st, name, ty)
		if err != nil {
			return "", err
		}
		if fragment == "" {
			continue // Ident/primitive typespec: no generated serializer (S6)
		}
		if FragmentExcluded(fragment, opts.ExcludeDefs) {
			continue
		}
		packers.WriteString(fragment)
		packers.WriteString("\n")
	}

	for _, name := range typespecNames {
		if st.IsHeader(name) {
			continue
		}
		ty, _ := st.Typespec(name)
		fragment, err := Unpack(st, name, ty)
		if err != nil {
			return "", err
		}
		if fragment == "" {
			continue
		}
		if FragmentExcluded(fragment, opts.ExcludeDefs) {
			continue
		}
		unpackers.WriteString(fragment)
		unpackers.WriteString("\n")
	}

	body := consts.String() + types.String() + typesyns.String() + packers.String() + unpackers.String()

	var out strings.Builder
	fmt.Fprintf(&out, "// Code generated by xdrgen. DO NOT EDIT.\n//\n// Generated from %s.\n\npackage %s\n\n", opts.Infile, opts.Package)

	if opts.Prologue != "" {
		out.WriteString(opts.Prologue)
		out.WriteString("\n\n")
	}

	out.WriteString("import (\n")
	if strings.Contains(body, "fmt.") {
		out.WriteString("\t\"fmt\"\n")
	}
	if strings.Contains(body, "reflect.") {
		out.WriteString("\t\"reflect\"\n")
	}
	fmt.Fprintf(&out, "\n\t%q\n)\n\n", xdrwireImportPath)

	if strings.Contains(body, "cloneOption(") {
		out.WriteString(cloneOptionHelper)
		out.WriteString("\n")
	}

	out.WriteString(body)
	return out.String(), nil
}

func contains(ss []string, s string) bool {
	for _, v := range ss {
		if v == s {
			return true
		}
	}
	return false
}
