// Package charset resolves and converts the text charset of captured
// response bodies, per spec.md §4.B.
package charset

import (
	"fmt"
	"mime"
	"regexp"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"

	"playbackbox/internal/perrors"
)

const (
	htmlSniffWindow = 8 << 10
	cssSniffWindow  = 1 << 10
)

// IsTextMime reports whether mime is one of the text types the content
// pipeline beautifies and charset-resolves.
func IsTextMime(m string) bool {
	switch m {
	case "text/html", "text/css", "application/javascript", "text/javascript":
		return true
	default:
		return false
	}
}

// Resolve implements the three-tier charset resolution of spec.md §4.B:
// Content-Type charset param, then HTML <meta charset>/http-equiv, then
// CSS @charset. Returns "" if nothing resolves. The second return value
// reports whether the charset came from the Content-Type header, as
// opposed to being sniffed from the body — playback uses this to decide
// whether to echo a charset parameter back onto the emitted Content-Type
// (see scenario 3 in spec.md §8: a charset detected only from content
// must not appear as a Content-Type parameter that the origin never
// sent).
func Resolve(contentType, mimeType string, body []byte) (string, bool) {
	if contentType != "" {
		if _, params, err := mime.ParseMediaType(contentType); err == nil {
			if cs, ok := params["charset"]; ok && cs != "" {
				return cs, true
			}
		}
	}

	switch mimeType {
	case "text/html":
		if cs := sniffHTMLCharset(body); cs != "" {
			return cs, false
		}
	case "text/css":
		if cs := sniffCSSCharset(body); cs != "" {
			return cs, false
		}
	}
	return "", false
}

var (
	metaCharsetRe = regexp.MustCompile(`(?i)<meta[^>]+charset\s*=\s*["']?([a-zA-Z0-9_\-]+)["']?`)
	metaHTTPEquivRe = regexp.MustCompile(`(?i)<meta[^>]+http-equiv\s*=\s*["']?content-type["']?[^>]*content\s*=\s*["'][^"']*charset=([a-zA-Z0-9_\-]+)`)
)

func sniffHTMLCharset(body []byte) string {
	window := body
	if len(window) > htmlSniffWindow {
		window = window[:htmlSniffWindow]
	}
	if m := metaCharsetRe.FindSubmatch(window); m != nil {
		return string(m[1])
	}
	if m := metaHTTPEquivRe.FindSubmatch(window); m != nil {
		return string(m[1])
	}
	return ""
}

var cssCharsetRe = regexp.MustCompile(`(?i)^\s*@charset\s+["']([a-zA-Z0-9_\-]+)["']\s*;`)

func sniffCSSCharset(body []byte) string {
	window := body
	if len(window) > cssSniffWindow {
		window = window[:cssSniffWindow]
	}
	if m := cssCharsetRe.FindSubmatch(window); m != nil {
		return string(m[1])
	}
	return ""
}

func lookupEncoding(label string) (encoding.Encoding, bool) {
	label = strings.TrimSpace(label)
	if label == "" {
		return nil, false
	}
	enc, err := htmlindex.Get(label)
	if err != nil {
		return nil, false
	}
	return enc, true
}

// Decode converts body, labeled with the given charset, to a UTF-8
// string. Unrecognized labels fall back to treating body as UTF-8.
func Decode(body []byte, label string) (string, error) {
	enc, ok := lookupEncoding(label)
	if !ok {
		return string(body), nil
	}
	out, err := enc.NewDecoder().Bytes(body)
	if err != nil {
		return "", fmt.Errorf("decode charset %q: %w", label, perrors.ErrDecodeFailed)
	}
	return string(out), nil
}

// Encode converts a UTF-8 string to bytes in the given charset. Falls
// back to UTF-8 bytes for unrecognized labels.
func Encode(s string, label string) ([]byte, error) {
	enc, ok := lookupEncoding(label)
	if !ok {
		return []byte(s), nil
	}
	out, err := enc.NewEncoder().Bytes([]byte(s))
	if err != nil {
		return nil, fmt.Errorf("encode charset %q: %w", label, perrors.ErrCompressFailed)
	}
	return out, nil
}

// Normalize reports the canonical htmlindex name for a label, or "" if
// unrecognized. The recording pipeline does not call it: ContentCharset
// keeps the label exactly as it was resolved.
func Normalize(label string) string {
	enc, ok := lookupEncoding(label)
	if !ok {
		return ""
	}
	name, _ := htmlindex.Name(enc)
	return name
}
