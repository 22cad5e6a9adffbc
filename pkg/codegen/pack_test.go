package codegen

import (
	"strings"
	"testing"

	"github.com/blockberries/xdrgen/pkg/schema"
)

func TestPackEnumCastsToInt32(t *testing.T) {
	st := buildSchema(t, "enum Color { RED = 0, GREEN = 1 };\n")
	ty, _ := st.Typespec("Color")
	got, err := Pack(st, "Color", ty)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "func PackColor(w *xdrwire.Writer, v Color) (int, error) {\n\treturn w.PackInt(int32(v))\n}\n"
	if got != want {
		t.Errorf("PackColor = %q, want %q", got, want)
	}
}

func TestPackStructAccumulatesFieldTotals(t *testing.T) {
	st := buildSchema(t, "struct Point { int x; int y; };\n")
	ty, _ := st.Typespec("Point")
	got, err := Pack(st, "Point", ty)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{
		"func PackPoint(w *xdrwire.Writer, v Point) (int, error) {",
		"w.PackInt(v.X)",
		"w.PackInt(v.Y)",
		"total := 0",
		"total += n",
		"return total, nil",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("expected output to contain %q, got:\n%s", want, got)
		}
	}
}

func TestPackStructNestedArrayAndFlexFields(t *testing.T) {
	st := buildSchema(t, "struct Holder { opaque fixed[4]; int items<8>; };\n")
	ty, _ := st.Typespec("Holder")
	got, err := Pack(st, "Holder", ty)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(got, "w.PackOpaqueFixed(v.Fixed[:])") {
		t.Errorf("expected a fixed opaque array to pack via PackOpaqueFixed, got:\n%s", got)
	}
	if !strings.Contains(got, "xdrwire.PackFlex(w, v.Items, 8,") {
		t.Errorf("expected the bounded int slice to pack via PackFlex, got:\n%s", got)
	}
}

func TestPackUnionSwitchesOnCaseAndPacksDiscriminant(t *testing.T) {
	st := buildSchema(t, `
		enum Kind { A = 0, B = 1 };
		union Choice switch (Kind kind) {
		case A:
			int n;
		case B:
			void;
		};
	`)
	ty, _ := st.Typespec("Choice")
	got, err := Pack(st, "Choice", ty)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{
		"func PackChoice(w *xdrwire.Writer, v Choice) (int, error) {",
		"switch x := v.(type) {",
		"case ChoiceA:",
		"w.PackInt(0)",
		"case ChoiceB:",
		"w.PackInt(1)",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("expected output to contain %q, got:\n%s", want, got)
		}
	}
}

func TestPackUnionDefaultCaseAlwaysErrors(t *testing.T) {
	st := buildSchema(t, `
		enum Kind { A = 0, B = 1, C = 2 };
		union Choice switch (Kind kind) {
		case A:
			int n;
		default:
			float f;
		};
	`)
	ty, _ := st.Typespec("Choice")
	got, err := Pack(st, "Choice", ty)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// The discriminant a default-case Go value actually carried isn't
	// preserved on the struct, so packing one is always an error.
	if !strings.Contains(got, "case ChoiceDefault:\n\t\treturn 0, xdrwire.InvalidCase(-1)") {
		t.Errorf("expected packing ChoiceDefault to unconditionally fail, got:\n%s", got)
	}
}

func TestPackUnionUnmatchedGoTypeFallsToDefaultBranch(t *testing.T) {
	st := buildSchema(t, `
		enum Kind { A = 0 };
		union Choice switch (Kind kind) {
		case A:
			int n;
		};
	`)
	ty, _ := st.Typespec("Choice")
	got, err := Pack(st, "Choice", ty)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(got, "\tdefault:\n\t\treturn 0, xdrwire.InvalidCase(-1)\n\t}\n}\n") {
		t.Errorf("expected a catch-all default branch for unknown Go implementations, got:\n%s", got)
	}
}

func TestPackUnionIncompatibleSelectorReportsError(t *testing.T) {
	st := buildSchema(t, "enum Kind { A = 0 };\n")
	u := &schema.UnionType{
		Selector: schema.Decl{Name: "kind", Type: &schema.IdentType{Name: "Kind"}},
		Cases: []schema.UnionCase{
			{Case: schema.IdentValue("NOT_A_MEMBER"), Decl: schema.Decl{Name: "n", Type: schema.TInt}},
		},
	}
	if _, err := Pack(st, "Choice", u); err == nil {
		t.Fatal("expected an error for a case label with no matching enum member")
	}
}

func TestPackArrayTypespecWrapsValueField(t *testing.T) {
	st := schema.NewSymbolTable()
	got, err := Pack(st, "Buf", &schema.ArrayType{Inner: schema.TInt, Length: schema.ConstValue(4)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(got, "func PackBuf(w *xdrwire.Writer, v Buf) (int, error) {\n\treturn xdrwire.PackArray(w, v.Value[:]") {
		t.Errorf("expected an array typespec to pack its Value field, got:\n%s", got)
	}
}

func TestPackPrimitiveTypespecEmitsNoFunction(t *testing.T) {
	got, err := Pack(schema.NewSymbolTable(), "Count", schema.TInt)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "" {
		t.Errorf("expected no generated function for a bare primitive typespec, got %q", got)
	}
}
