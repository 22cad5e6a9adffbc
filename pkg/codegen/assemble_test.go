package codegen

import (
	"os"
	"strings"
	"testing"

	"github.com/blockberries/xdrgen/pkg/schema"
)

func buildAssembleInput(t *testing.T, src string) ([]schema.Defn, *schema.SymbolTable) {
	t.Helper()
	defns, errs := schema.ParseFile("assemble.x", src)
	if len(errs) > 0 {
		t.Fatalf("unexpected parse errors: %v", errs)
	}
	st := schema.NewSymbolTable()
	if err := st.Build(defns); err != nil {
		t.Fatalf("unexpected build error: %v", err)
	}
	return defns, st
}

func TestAssembleEndToEndProducesCompilableShapedSource(t *testing.T) {
	defns, st := buildAssembleInput(t, `
		const MAX_NAME = 64;

		enum ContactKind {
			PERSONAL = 0,
			WORK = 1
		};

		struct PhoneNumber {
			opaque countryCode[2];
			string number<16>;
		};

		union Contact switch (ContactKind kind) {
		case PERSONAL:
		case WORK:
			PhoneNumber phone;
		};

		struct Entry {
			string name<MAX_NAME>;
			Contact contact;
			Entry *next;
		};
	`)

	got, err := Assemble(defns, st, Options{Infile: "assemble.x", Package: "addressbook"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, want := range []string{
		"// Code generated by xdrgen. DO NOT EDIT.",
		"package addressbook",
		"\"github.com/blockberries/xdrgen/pkg/xdrwire\"",
		"const MaxName int64 = 64",
		"type ContactKind int32",
		"type PhoneNumber struct {",
		"type Contact interface {",
		"type Entry struct {",
		"func PackPhoneNumber(w *xdrwire.Writer, v PhoneNumber) (int, error) {",
		"func UnpackEntry(r *xdrwire.Reader) (Entry, int, error) {",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("expected assembled output to contain %q, got:\n%s", want, got)
		}
	}

	// Emission order: consts, then types, then typesyns, then packers, then unpackers.
	constIdx := strings.Index(got, "const MaxName")
	typeIdx := strings.Index(got, "type ContactKind")
	packIdx := strings.Index(got, "func PackContactKind")
	unpackIdx := strings.Index(got, "func UnpackContactKind")
	if !(constIdx < typeIdx && typeIdx < packIdx && packIdx < unpackIdx) {
		t.Errorf("expected const/type/pack/unpack emission order, got indices %d/%d/%d/%d", constIdx, typeIdx, packIdx, unpackIdx)
	}

	// reflect is only imported when an Equal method using it was emitted.
	if strings.Contains(got, "reflect.DeepEqual") && !strings.Contains(got, "\"reflect\"") {
		t.Error("expected the reflect import when reflect.DeepEqual is used")
	}
}

func TestAssembleExcludesNamedDefinitions(t *testing.T) {
	defns, st := buildAssembleInput(t, `
		struct Kept { int a; };
		struct Dropped { int b; };
	`)
	got, err := Assemble(defns, st, Options{Infile: "x", Package: "p", ExcludeDefs: []string{"dropped"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(got, "type Kept struct {") {
		t.Error("expected Kept to remain in the assembled output")
	}
	if strings.Contains(got, "type Dropped struct {") {
		t.Error("expected Dropped to be excluded from the assembled output")
	}
	if strings.Contains(got, "PackDropped") || strings.Contains(got, "UnpackDropped") {
		t.Error("expected Dropped's pack/unpack fragments to also be excluded")
	}
}

func TestAssembleHeaderOriginDefinitionsSkipped(t *testing.T) {
	dir := t.TempDir()
	headerPath := dir + "/header.x"
	mainPath := dir + "/main.x"
	if err := os.WriteFile(headerPath, []byte("struct Shared { int id; };\n"), 0o644); err != nil {
		t.Fatalf("failed to write header file: %v", err)
	}
	if err := os.WriteFile(mainPath, []byte("struct Wrapper { Shared *inner; };\n"), 0o644); err != nil {
		t.Fatalf("failed to write main file: %v", err)
	}

	all, st, err := schema.Load(mainPath, headerPath)
	if err != nil {
		t.Fatalf("unexpected load error: %v", err)
	}

	got, err := Assemble(all, st, Options{Infile: "main.x", Package: "p"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(got, "type Shared struct {") {
		t.Error("expected the header-origin type to be skipped from the assembled output")
	}
	if !strings.Contains(got, "type Wrapper struct {") {
		t.Error("expected the main-origin type to still be emitted")
	}
}

func TestAssembleTaggingAttachesFragmentAfterMatchingType(t *testing.T) {
	defns, st := buildAssembleInput(t, `
		const MSG_VERSION = 1;
		struct Envelope { int body; };
	`)
	opts := Options{
		Infile:  "x",
		Package: "p",
		Tagging: &TaggingOptions{
			ConstFilter: func(name string) bool { return strings.HasPrefix(name, "MSG_") },
			TypeFilter:  func(typeName, constName string) bool { return typeName == "Envelope" },
			Quote:       DefaultQuote,
		},
	}
	got, err := Assemble(defns, st, opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(got, "const EnvelopeTag = MsgVersion") {
		t.Errorf("expected the tagging fragment attached after Envelope, got:\n%s", got)
	}
}

func TestAssemblePrologueInsertedAfterPackageClause(t *testing.T) {
	defns, st := buildAssembleInput(t, "struct Empty { int x; };\n")
	got, err := Assemble(defns, st, Options{Infile: "x", Package: "p", Prologue: "//go:build !legacy"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	pkgIdx := strings.Index(got, "package p")
	prologueIdx := strings.Index(got, "//go:build !legacy")
	if pkgIdx == -1 || prologueIdx == -1 || prologueIdx < pkgIdx {
		t.Errorf("expected the prologue to follow the package clause, got:\n%s", got)
	}
}
