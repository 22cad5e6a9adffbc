// Package codegen renders a parsed, symbol-table-resolved XDR specification
// as Go source: a type-token emitter (C4), a declaration emitter (C5), and
// paired pack/unpack emitters (C6/C7), assembled into one output file.
package codegen

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// titleCaser renders the first letter of each word upper-case; used by
// ToPascalCase to turn XDR's snake_case/SCREAMING_CASE identifiers into
// exported Go names.
var titleCaser = cases.Title(language.English)

// ToPascalCase converts an XDR identifier to PascalCase (exported Go names:
// struct/type/enum-member names).
func ToPascalCase(s string) string {
	parts := splitName(s)
	for i, p := range parts {
		parts[i] = titleCaser.String(strings.ToLower(p))
	}
	return strings.Join(parts, "")
}

// ToCamelCase converts an XDR identifier to camelCase (unexported helper
// names, e.g. local variables in pack/unpack bodies).
func ToCamelCase(s string) string {
	pascal := ToPascalCase(s)
	if len(pascal) == 0 {
		return ""
	}
	return strings.ToLower(pascal[:1]) + pascal[1:]
}

// splitName splits an identifier into words on underscores, hyphens, and
// lower-to-upper case transitions.
func splitName(s string) []string {
	if s == "" {
		return nil
	}
	var parts []string
	var current strings.Builder
	for i, r := range s {
		if r == '_' || r == '-' {
			if current.Len() > 0 {
				parts = append(parts, current.String())
				current.Reset()
			}
			continue
		}
		if i > 0 && isUpper(r) && !isUpper(rune(s[i-1])) {
			if current.Len() > 0 {
				parts = append(parts, current.String())
				current.Reset()
			}
		}
		current.WriteRune(r)
	}
	if current.Len() > 0 {
		parts = append(parts, current.String())
	}
	return parts
}

func isUpper(r rune) bool { return r >= 'A' && r <= 'Z' }

// Indent indents each non-empty line of s by the given number of tabs.
func Indent(s string, tabs int) string {
	indent := strings.Repeat("\t", tabs)
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if line != "" {
			lines[i] = indent + line
		}
	}
	return strings.Join(lines, "\n")
}

// GoComment wraps text as a "//"-prefixed Go doc comment, one line per
// input line.
func GoComment(text string) string {
	if text == "" {
		return ""
	}
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = "// " + line
	}
	return strings.Join(lines, "\n")
}
