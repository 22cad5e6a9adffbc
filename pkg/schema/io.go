package schema

import (
	"io"
	"os"
)

// Source is one parsed XDR input, paired with the symbol-table Build call
// that registers it. Build is deferred to the caller (Load) so the header
// input, if any, can be registered before the main input — xdr_header
// definitions must already be visible when the main file's identifiers are
// resolved.
type Source struct {
	Filename string
	Defns    []Defn
	Errors   []ParseError
}

// ReadSource reads and parses a single XDR file. path == "-" reads stdin.
func ReadSource(path string) (*Source, error) {
	content, err := readAll(path)
	if err != nil {
		return nil, IOErr("failed to read "+path, err)
	}
	defns, errs := ParseFile(path, string(content))
	return &Source{Filename: path, Defns: defns, Errors: errs}, nil
}

func readAll(path string) ([]byte, error) {
	if path == "-" || path == "" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}

// Load reads and parses the main XDR input together with an optional
// xdr_header input, builds one SymbolTable from both (header first, so its
// definitions are visible while resolving the main file), and marks every
// header-derived definition so the assembler can skip it during emission.
//
// Load returns the first parse error found across either input as a
// *GenError, or the combined Defns and SymbolTable on success. No partial
// output is ever produced from a failed parse.
func Load(mainPath, headerPath string) ([]Defn, *SymbolTable, error) {
	var all []Defn
	st := NewSymbolTable()

	if headerPath != "" {
		header, err := ReadSource(headerPath)
		if err != nil {
			return nil, nil, err
		}
		if len(header.Errors) > 0 {
			e := header.Errors[0]
			return nil, nil, ParseErr(e.Position, "%s", e.Message)
		}
		markHeader(header.Defns)
		if err := st.Build(header.Defns); err != nil {
			return nil, nil, err
		}
		all = append(all, header.Defns...)
	}

	main, err := ReadSource(mainPath)
	if err != nil {
		return nil, nil, err
	}
	if len(main.Errors) > 0 {
		e := main.Errors[0]
		return nil, nil, ParseErr(e.Position, "%s", e.Message)
	}
	if err := st.Build(main.Defns); err != nil {
		return nil, nil, err
	}
	all = append(all, main.Defns...)

	return all, st, nil
}

// markHeader sets Header: true on every top-level definition parsed from an
// xdr_header input, in place.
func markHeader(defns []Defn) {
	for _, d := range defns {
		switch def := d.(type) {
		case *TypespecDefn:
			def.Header = true
		case *TypesynDefn:
			def.Header = true
		case *ConstDefn:
			def.Header = true
		}
	}
}
