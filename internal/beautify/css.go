package beautify

import (
	"strings"

	"github.com/gorilla/css/scanner"
)

// CSS re-serializes src with pretty-printing, preserving any leading
// @charset directive verbatim, per spec.md §4.B step 5.
func CSS(src string) string {
	s := scanner.New(src)
	var out strings.Builder
	depth := 0
	atLineStart := true
	pendingSpace := false

	indent := func() {
		out.WriteString(strings.Repeat("  ", depth))
		atLineStart = false
		pendingSpace = false
	}

	for {
		tok := s.Next()
		if tok == nil || tok.Type == scanner.TokenEOF || tok.Type == scanner.TokenError {
			break
		}
		if tok.Type == scanner.TokenComment {
			continue
		}
		if tok.Type == scanner.TokenS {
			if !atLineStart && !strings.HasSuffix(out.String(), " ") {
				pendingSpace = true
			}
			continue
		}

		switch tok.Value {
		case "{":
			if atLineStart {
				indent()
			}
			out.WriteString(" {\n")
			depth++
			atLineStart = true
			pendingSpace = false

		case "}":
			if depth > 0 {
				depth--
			}
			out.WriteString(strings.Repeat("  ", depth))
			out.WriteString("}\n")
			atLineStart = true
			pendingSpace = false

		case ";":
			out.WriteString(";\n")
			atLineStart = true
			pendingSpace = false

		case ":":
			out.WriteString(": ")
			pendingSpace = false

		default:
			if atLineStart {
				indent()
			} else if pendingSpace {
				out.WriteByte(' ')
				pendingSpace = false
			}
			out.WriteString(tok.Value)
		}
	}

	return strings.TrimRight(out.String(), "\n") + "\n"
}
