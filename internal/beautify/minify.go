package beautify

import "strings"

// IsMinified reports whether the beautified form has at least twice as
// many lines as the originally captured form, per spec.md §4.B step 6.
func IsMinified(original, beautified string) bool {
	origLines := countLines(original)
	beautLines := countLines(beautified)
	if origLines == 0 {
		return false
	}
	return beautLines >= 2*origLines
}

func countLines(s string) int {
	if s == "" {
		return 0
	}
	return strings.Count(s, "\n") + 1
}
