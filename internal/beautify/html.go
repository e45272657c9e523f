package beautify

import (
	"strings"

	"golang.org/x/net/html"
)

// voidElements never get a matching close tag and are never indented
// for children.
var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"param": true, "source": true, "track": true, "wbr": true,
}

// rawTextElements hold literal script/style source as their content;
// the HTML5 tokenizer still reports it via TextToken, but it must never
// be HTML-escaped or it stops being valid JS/CSS.
var rawTextElements = map[string]bool{
	"script": true, "style": true,
}

// HTML re-serializes src through the HTML5 tokenizer with 2-space
// indentation, escaping attribute values per spec.md §4.B step 5.
func HTML(src string) string {
	z := html.NewTokenizer(strings.NewReader(src))
	var out strings.Builder
	depth := 0
	needsNewline := false
	rawText := ""

	writeIndent := func() {
		if needsNewline {
			out.WriteByte('\n')
		}
		out.WriteString(strings.Repeat("  ", depth))
		needsNewline = false
	}

	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			return strings.TrimRight(out.String(), "\n") + "\n"

		case html.DoctypeToken:
			writeIndent()
			out.WriteString("<!DOCTYPE " + string(z.Text()) + ">")
			needsNewline = true

		case html.CommentToken:
			writeIndent()
			out.WriteString("<!--" + string(z.Text()) + "-->")
			needsNewline = true

		case html.TextToken:
			if rawText != "" {
				text := string(z.Text())
				if text == "" {
					continue
				}
				writeIndent()
				out.WriteString(text)
				needsNewline = true
				continue
			}
			text := strings.TrimSpace(string(z.Text()))
			if text == "" {
				continue
			}
			writeIndent()
			out.WriteString(escapeText(text))
			needsNewline = true

		case html.StartTagToken, html.SelfClosingTagToken:
			tok := z.Token()
			writeIndent()
			out.WriteString(renderTag(tok))
			needsNewline = true
			if tt == html.StartTagToken && !voidElements[tok.Data] {
				depth++
				if rawTextElements[tok.Data] {
					rawText = tok.Data
				}
			}

		case html.EndTagToken:
			tok := z.Token()
			if depth > 0 {
				depth--
			}
			if tok.Data == rawText {
				rawText = ""
			}
			writeIndent()
			out.WriteString("</" + tok.Data + ">")
			needsNewline = true
		}
	}
}

func renderTag(tok html.Token) string {
	var b strings.Builder
	b.WriteByte('<')
	b.WriteString(tok.Data)
	for _, a := range tok.Attr {
		b.WriteByte(' ')
		b.WriteString(a.Key)
		b.WriteString(`="`)
		b.WriteString(escapeAttr(a.Val))
		b.WriteByte('"')
	}
	if tok.Type == html.SelfClosingTagToken {
		b.WriteString(" /")
	}
	b.WriteByte('>')
	return b.String()
}

func escapeAttr(s string) string {
	r := strings.NewReplacer(
		"&", "&amp;",
		`"`, "&quot;",
		"<", "&lt;",
		">", "&gt;",
	)
	return r.Replace(s)
}

func escapeText(s string) string {
	r := strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
	)
	return r.Replace(s)
}
