package codegen

import "strings"

// ExcludeDefinitionLine reports whether line declares one of excludeDefs,
// adapted from the original generator's exclude_definition_line
// (original_source/xdrgen/src/lib.rs) to the declaration shapes this
// package's Declare/Pack/Unpack emitters produce: "const NAME", "type
// NAME", a method receiver "(... NAME)", and the "func PackNAME(" /
// "func UnpackNAME(" function declarations.
func ExcludeDefinitionLine(line string, excludeDefs []string) bool {
	for _, name := range excludeDefs {
		goName := GoTypeName(name)
		if strings.Contains(line, "const "+goName) ||
			strings.Contains(line, "type "+goName+" ") ||
			strings.Contains(line, "type "+goName+"\n") ||
			strings.Contains(line, " "+goName+") ") ||
			strings.HasPrefix(line, "func Pack"+goName+"(") ||
			strings.HasPrefix(line, "func Unpack"+goName+"(") {
			return true
		}
	}
	return false
}

// FragmentExcluded reports whether any line of a rendered define/pack/unpack
// fragment names an excluded definition. The whole fragment is dropped as a
// unit — matching the original's per-item filtering, `for it in res`, rather
// than trimming individual lines out of an otherwise-kept fragment.
func FragmentExcluded(fragment string, excludeDefs []string) bool {
	if len(excludeDefs) == 0 {
		return false
	}
	for _, line := range strings.Split(fragment, "\n") {
		if ExcludeDefinitionLine(line, excludeDefs) {
			return true
		}
	}
	return false
}
