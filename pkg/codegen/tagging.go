package codegen

import "github.com/blockberries/xdrgen/pkg/schema"

// TaggingOptions implements the tagging hook from the original Rust
// generator's ConstTaggingOptions (original_source/xdrgen/src/lib.rs,
// tagged_types): it remembers the most recent top-level const whose name
// passes ConstFilter, then attaches a verbatim fragment — built by Quote —
// to every following typespec whose name passes TypeFilter, until another
// matching const replaces it.
type TaggingOptions struct {
	ConstFilter func(name string) bool
	TypeFilter  func(typeName, constName string) bool
	Quote       func(typeName, constName string) string
}

// TaggedTypes walks defns in order, replaying the original's single-pass
// state machine, and returns the fragment to attach after each matching
// typespec's declaration, keyed by typespec name.
func TaggedTypes(opts *TaggingOptions, defns []schema.Defn, excluded func(name string) bool) map[string]string {
	result := make(map[string]string)
	var tagConst string
	haveTag := false

	for _, d := range defns {
		switch def := d.(type) {
		case *schema.ConstDefn:
			if excluded(def.Name) {
				continue
			}
			if opts.ConstFilter(def.Name) {
				tagConst = def.Name
				haveTag = true
			}
		case *schema.TypespecDefn:
			if excluded(def.Name) {
				continue
			}
			if haveTag && opts.TypeFilter(def.Name, tagConst) {
				result[def.Name] = opts.Quote(def.Name, tagConst)
			}
		}
	}
	return result
}

// DefaultQuote attaches a typed constant aliasing the tagging const's
// value to the tagged type, the simplest fragment a caller can build a
// lookup table from.
func DefaultQuote(typeName, constName string) string {
	return "const " + GoTypeName(typeName) + "Tag = " + GoTypeName(constName) + "\n"
}
