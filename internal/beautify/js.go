package beautify

import (
	"strings"
	"text/scanner"
)

// JS re-flows src to one-statement-per-line output using a conservative
// token-based re-indenter. It is not a full JS parser (no ecosystem
// JS-AST library is present anywhere in the retrieved pack's go.mod
// files — see DESIGN.md) but is sufficient to de-minify typical
// single-line bundles for human readability, which is all spec.md §4.B
// requires of this step.
func JS(src string) string {
	var s scanner.Scanner
	s.Init(strings.NewReader(src))
	s.Mode = scanner.ScanIdents | scanner.ScanFloats | scanner.ScanChars |
		scanner.ScanStrings | scanner.ScanRawStrings | scanner.ScanComments
	s.Whitespace = 1<<'\t' | 1<<'\n' | 1<<'\r' | 1<<' '

	var out strings.Builder
	depth := 0
	atLineStart := true
	lastTok := ""

	writeIndent := func() {
		out.WriteString(strings.Repeat("  ", depth))
		atLineStart = false
	}

	needsSpaceBefore := func(tok string) bool {
		switch tok {
		case ")", "]", ";", ",", ".", "(":
			return false
		}
		switch lastTok {
		case "(", "[", ".", "":
			return false
		}
		return true
	}

	for tok := s.Scan(); tok != scanner.EOF; tok = s.Scan() {
		text := s.TokenText()

		switch text {
		case "{":
			if atLineStart {
				writeIndent()
			} else if needsSpaceBefore(text) {
				out.WriteByte(' ')
			}
			out.WriteString("{\n")
			depth++
			atLineStart = true
			lastTok = text
			continue

		case "}":
			if depth > 0 {
				depth--
			}
			if !atLineStart {
				out.WriteString("\n")
			}
			out.WriteString(strings.Repeat("  ", depth))
			out.WriteString("}\n")
			atLineStart = true
			lastTok = text
			continue

		case ";":
			out.WriteString(";\n")
			atLineStart = true
			lastTok = text
			continue
		}

		if atLineStart {
			writeIndent()
		} else if needsSpaceBefore(text) {
			out.WriteByte(' ')
		}
		out.WriteString(text)
		lastTok = text
	}

	return strings.TrimRight(out.String(), "\n") + "\n"
}
