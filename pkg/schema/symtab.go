package schema

import (
	"sort"

	log "github.com/golang/glog"
)

// constEntry is a symbol-table constant binding: its resolved value and,
// for enum members, the name of the enclosing enum type.
type constEntry struct {
	Value int64
	Scope string // "" if not an enum member
}

// SymbolTable collects constants (with optional enum scope), type
// specifications, and type synonyms parsed from one or more XDR sources,
// and answers the name and value lookups the emitters need. Built once by
// Build, then read-only for the rest of a run.
type SymbolTable struct {
	consts    map[string]constEntry
	typespecs map[string]Type
	typesyns  map[string]Type

	// order preserves first-seen definition order for diagnostics; lookups
	// and emission both use name-sorted iteration, which is computed on
	// demand from the maps rather than carried here.
	constOrder []string

	// header marks definitions that came from the xdr_header input:
	// registered above like any other definition, but excluded from
	// emission by the assembler.
	header map[string]bool
}

// NewSymbolTable returns an empty SymbolTable ready for Build.
func NewSymbolTable() *SymbolTable {
	return &SymbolTable{
		consts:    make(map[string]constEntry),
		typespecs: make(map[string]Type),
		typesyns:  make(map[string]Type),
		header:    make(map[string]bool),
	}
}

// Build inserts every definition from defns into the table. It is safe to
// call Build more than once on the same table (e.g. once for an xdr_header
// input, once for the main input) — the two calls compose the header's and
// main input's constants into one consistent namespace.
//
// Returns a *GenError (KindParse) on the first inconsistency: a name bound
// as both typespec and typesyn, a duplicate constant name, or two enum
// members of the same enum resolving to the same integer value (decided
// here as reject-at-build-time).
func (st *SymbolTable) Build(defns []Defn) error {
	for _, d := range defns {
		switch def := d.(type) {
		case *ConstDefn:
			if err := st.defconst(def.Name, def.Value, ""); err != nil {
				return err
			}
			if def.Header {
				st.header[def.Name] = true
			}
		case *TypespecDefn:
			if err := st.deftype(def.Name, def.Type); err != nil {
				return err
			}
			if def.Header {
				st.header[def.Name] = true
			}
			if enum, ok := def.Type.(*EnumType); ok {
				if err := st.registerEnumConsts(def.Name, enum); err != nil {
					return err
				}
			}
		case *TypesynDefn:
			if err := st.deftypesyn(def.Name, def.Type); err != nil {
				return err
			}
			if def.Header {
				st.header[def.Name] = true
			}
		case *ProcedureDefn:
			// Parsed but inert: XDR's procedural layer is out of scope
			// for typing and emission.
		}
	}
	return nil
}

// IsHeader reports whether name was defined by an xdr_header input and
// should therefore be skipped during emission.
func (st *SymbolTable) IsHeader(name string) bool {
	return st.header[name]
}

func (st *SymbolTable) defconst(name string, value int64, scope string) error {
	if _, dup := st.consts[name]; dup {
		return ParseErr(Position{}, "duplicate constant name %q", name)
	}
	st.consts[name] = constEntry{Value: value, Scope: scope}
	st.constOrder = append(st.constOrder, name)
	return nil
}

func (st *SymbolTable) deftype(name string, ty Type) error {
	if _, dup := st.typespecs[name]; dup {
		return ParseErr(Position{}, "duplicate type name %q", name)
	}
	if _, dup := st.typesyns[name]; dup {
		return ParseErr(Position{}, "name %q already bound as a type synonym", name)
	}
	st.typespecs[name] = ty
	return nil
}

func (st *SymbolTable) deftypesyn(name string, ty Type) error {
	if _, dup := st.typesyns[name]; dup {
		return ParseErr(Position{}, "duplicate type synonym name %q", name)
	}
	if _, dup := st.typespecs[name]; dup {
		return ParseErr(Position{}, "name %q already bound as a type", name)
	}
	st.typesyns[name] = ty
	return nil
}

// registerEnumConsts assigns implicit enum member values left-to-right:
// prev starts at -1 and only advances when a member's value successfully
// resolves. A member whose
// explicit Value is an unresolvable Ident is skipped entirely — neither
// registered nor counted towards the next member's default — and a
// diagnostic is logged rather than failing the build.
func (st *SymbolTable) registerEnumConsts(scope string, enum *EnumType) error {
	prev := int64(-1)
	seen := make(map[int64]string, len(enum.Members))
	for _, member := range enum.Members {
		var v int64
		if member.Value == nil {
			v = prev + 1
		} else {
			resolved, ok := st.LookupValue(member.Value)
			if !ok {
				log.Warningf("schema: enum %s member %s: unknown value %s, skipping", scope, member.Name, member.Value)
				continue
			}
			v = resolved
		}
		if existing, dup := seen[v]; dup {
			return ParseErr(Position{}, "enum %s: members %q and %q both resolve to value %d", scope, existing, member.Name, v)
		}
		seen[v] = member.Name
		if err := st.defconst(member.Name, v, scope); err != nil {
			return err
		}
		prev = v
	}
	return nil
}

// LookupConst returns the resolved value and enclosing enum scope (empty
// if not an enum member) for a constant name.
func (st *SymbolTable) LookupConst(name string) (value int64, scope string, ok bool) {
	e, ok := st.consts[name]
	return e.Value, e.Scope, ok
}

// LookupValue resolves a Value to its integer: a ConstValue yields itself,
// an IdentValue delegates to LookupConst.
func (st *SymbolTable) LookupValue(v Value) (int64, bool) {
	switch val := v.(type) {
	case ConstValue:
		return int64(val), true
	case IdentValue:
		value, _, ok := st.LookupConst(string(val))
		return value, ok
	default:
		return 0, false
	}
}

// LookupType resolves a name to its Type, checking typespecs first, then
// typesyns.
func (st *SymbolTable) LookupType(name string) (Type, bool) {
	if ty, ok := st.typespecs[name]; ok {
		return ty, true
	}
	if ty, ok := st.typesyns[name]; ok {
		return ty, true
	}
	return nil, false
}

// IsTypespec reports whether name is bound as a typespec (as opposed to a
// typesyn or unbound).
func (st *SymbolTable) IsTypespec(name string) bool {
	_, ok := st.typespecs[name]
	return ok
}

// ConstNames returns every constant name in sorted order.
func (st *SymbolTable) ConstNames() []string {
	names := make([]string, 0, len(st.consts))
	for name := range st.consts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// TypespecNames returns every typespec name in sorted order.
func (st *SymbolTable) TypespecNames() []string {
	names := make([]string, 0, len(st.typespecs))
	for name := range st.typespecs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// TypesynNames returns every typesyn name in sorted order.
func (st *SymbolTable) TypesynNames() []string {
	names := make([]string, 0, len(st.typesyns))
	for name := range st.typesyns {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Typespec returns the Type bound to a typespec name.
func (st *SymbolTable) Typespec(name string) (Type, bool) {
	ty, ok := st.typespecs[name]
	return ty, ok
}

// Typesyn returns the Type bound to a typesyn name.
func (st *SymbolTable) Typesyn(name string) (Type, bool) {
	ty, ok := st.typesyns[name]
	return ty, ok
}

// ConstValueFor returns the signed value bound to a plain (non-enum-member)
// constant name, for the C5 constant-declaration emitter.
func (st *SymbolTable) ConstValueFor(name string) (int64, bool) {
	e, ok := st.consts[name]
	return e.Value, ok
}
