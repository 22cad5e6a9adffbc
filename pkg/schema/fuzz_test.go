//go:build go1.18

package schema

import "testing"

// FuzzSchemaParser tests that the parser never panics on arbitrary input.
func FuzzSchemaParser(f *testing.F) {
	f.Add(`const MAXNAME = 64;`)
	f.Add(`typedef int MyInt;`)
	f.Add(`typedef opaque Blob<1024>;`)
	f.Add(`
enum Color {
	RED = 2,
	GREEN,
	BLUE
};
`)
	f.Add(`
struct Point {
	int x;
	int y;
	opaque data[16];
	string name<32>;
};
`)
	f.Add(`
union Shape switch (int kind) {
case 0:
case 1:
	int value;
default:
	void;
};
`)
	f.Add(`
struct Node {
	int value;
	Node *next;
};
`)
	f.Add(`
program FOO_PROG {
	version FOO_VERS {
		int FOOPROC(int) = 1;
	} = 1;
} = 0x20000001;
`)

	f.Add(``)
	f.Add(`{`)
	f.Add(`}`)
	f.Add(`struct`)
	f.Add(`struct Foo`)
	f.Add(`struct Foo {`)
	f.Add(`struct Foo { int`)
	f.Add(`struct Foo { int x`)
	f.Add(`union Foo switch`)
	f.Add(`union Foo switch (int kind) { case`)
	f.Add(`typedef void Nothing;`)
	f.Add(`const = 1;`)
	f.Add(`enum Empty { };`)

	f.Fuzz(func(t *testing.T, input string) {
		p := NewParser("fuzz.x", input)
		_, _ = p.Parse()
	})
}

// FuzzLexer tests that the lexer never panics on arbitrary input.
func FuzzLexer(f *testing.F) {
	f.Add(`const MAXNAME = 64;`)
	f.Add(`"hello world"`)
	f.Add(`123`)
	f.Add(`-17`)
	f.Add(`0x1F`)
	f.Add(`017`)
	f.Add(`identifier`)
	f.Add(`// comment`)
	f.Add(`/// doc comment`)
	f.Add(`/* multi-line comment */`)
	f.Add(`/* unterminated`)
	f.Add(`@#$%`)

	f.Fuzz(func(t *testing.T, input string) {
		l := NewLexer("fuzz.x", input)
		for {
			tok := l.Next()
			if tok.Type == TokenEOF || tok.Type == TokenError {
				break
			}
		}
	})
}

// FuzzDerivesOf tests that derivation analysis never panics, even on
// pathological (large, deeply self-referential) type graphs.
func FuzzDerivesOf(f *testing.F) {
	f.Add(`struct Node { int value; Node *next; };`)
	f.Add(`struct Big { int items[1000000]; };`)
	f.Add(`struct A { B *b; }; struct B { A *a; };`)

	f.Fuzz(func(t *testing.T, input string) {
		defns, errs := ParseFile("fuzz.x", input)
		if len(errs) > 0 {
			return
		}
		st := NewSymbolTable()
		if err := st.Build(defns); err != nil {
			return
		}
		for _, name := range st.TypespecNames() {
			ty, ok := st.Typespec(name)
			if !ok {
				continue
			}
			_ = DerivesOf(st, name, ty)
		}
	})
}
