package codegen

import (
	"strings"
	"testing"

	"github.com/blockberries/xdrgen/pkg/schema"
)

func buildDefns(t *testing.T, src string) []schema.Defn {
	t.Helper()
	defns, errs := schema.ParseFile("tag.x", src)
	if len(errs) > 0 {
		t.Fatalf("unexpected parse errors: %v", errs)
	}
	return defns
}

func TestTaggedTypesAttachesFragmentToNextMatchingType(t *testing.T) {
	defns := buildDefns(t, `
		const MSG_VERSION = 1;
		struct Envelope { int body; };
	`)
	opts := &TaggingOptions{
		ConstFilter: func(name string) bool { return strings.HasPrefix(name, "MSG_") },
		TypeFilter:  func(typeName, constName string) bool { return typeName == "Envelope" },
		Quote:       DefaultQuote,
	}
	got := TaggedTypes(opts, defns, func(string) bool { return false })
	frag, ok := got["Envelope"]
	if !ok {
		t.Fatal("expected a tag fragment attached to Envelope")
	}
	if frag != "const EnvelopeTag = MsgVersion\n" {
		t.Errorf("unexpected fragment: %q", frag)
	}
}

func TestTaggedTypesIgnoresConstsFailingFilter(t *testing.T) {
	defns := buildDefns(t, `
		const OTHER = 1;
		struct Envelope { int body; };
	`)
	opts := &TaggingOptions{
		ConstFilter: func(name string) bool { return strings.HasPrefix(name, "MSG_") },
		TypeFilter:  func(typeName, constName string) bool { return true },
		Quote:       DefaultQuote,
	}
	got := TaggedTypes(opts, defns, func(string) bool { return false })
	if len(got) != 0 {
		t.Errorf("expected no tags attached, got %v", got)
	}
}

func TestTaggedTypesOneTagCanApplyToMultipleFollowingTypes(t *testing.T) {
	defns := buildDefns(t, `
		const MSG_VERSION = 1;
		struct First { int a; };
		struct Second { int b; };
	`)
	opts := &TaggingOptions{
		ConstFilter: func(name string) bool { return strings.HasPrefix(name, "MSG_") },
		TypeFilter:  func(typeName, constName string) bool { return true },
		Quote:       DefaultQuote,
	}
	got := TaggedTypes(opts, defns, func(string) bool { return false })
	if _, ok := got["First"]; !ok {
		t.Error("expected First to be tagged")
	}
	if _, ok := got["Second"]; !ok {
		t.Error("expected Second to also be tagged by the same preceding const")
	}
}

func TestTaggedTypesSkipsExcludedConstAndType(t *testing.T) {
	defns := buildDefns(t, `
		const MSG_VERSION = 1;
		struct Envelope { int body; };
	`)
	opts := &TaggingOptions{
		ConstFilter: func(name string) bool { return strings.HasPrefix(name, "MSG_") },
		TypeFilter:  func(typeName, constName string) bool { return true },
		Quote:       DefaultQuote,
	}
	excluded := func(name string) bool { return name == "MSG_VERSION" }
	got := TaggedTypes(opts, defns, excluded)
	if len(got) != 0 {
		t.Errorf("expected no tags when the tagging const is excluded, got %v", got)
	}
}

func TestDefaultQuoteRendersTypedConstAlias(t *testing.T) {
	got := DefaultQuote("envelope", "msg_version")
	if got != "const EnvelopeTag = MsgVersion\n" {
		t.Errorf("unexpected fragment: %q", got)
	}
}
