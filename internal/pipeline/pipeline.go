package pipeline

import (
	"fmt"
	"mime"
	"net/http"

	"playbackbox/internal/beautify"
	"playbackbox/internal/charset"
	"playbackbox/internal/inventory"
)

// RawResponse is the input to the recording-side pipeline: everything
// captured about one response before it has been decompressed, charset
// resolved, or beautified.
type RawResponse struct {
	Method          string
	URL             string
	TTFBMs          int64
	DownloadEndMs   *int64
	Mbps            *float64
	StatusCode      int
	ErrorMessage    string
	Headers         http.Header
	WireBody        []byte // as received from the origin, still compressed
}

// ProcessForRecording runs pipeline steps 1-7 of spec.md §4.B: decompress,
// classify, resolve charset, decode to UTF-8, beautify if text, detect
// minification, and return the bytes that should be written to the
// content tree alongside the Resource metadata that describes them.
func ProcessForRecording(raw RawResponse) (inventory.Resource, []byte, error) {
	contentType := raw.Headers.Get("Content-Type")
	mimeType := ""
	if contentType != "" {
		if mt, _, err := mime.ParseMediaType(contentType); err == nil {
			mimeType = mt
		}
	}

	enc := NormalizeEncoding(raw.Headers.Get("Content-Encoding"))

	res := inventory.Resource{
		Method:          raw.Method,
		URL:             raw.URL,
		TTFBMs:          raw.TTFBMs,
		DownloadEndMs:   raw.DownloadEndMs,
		Mbps:            raw.Mbps,
		StatusCode:      raw.StatusCode,
		ErrorMessage:    raw.ErrorMessage,
		RawHeaders:      inventory.BuildRawHeaders(raw.Headers),
		ContentEncoding: enc,
		ContentTypeMime: mimeType,
	}

	if len(raw.WireBody) == 0 {
		return res, nil, nil
	}

	decoded, err := Decompress(raw.WireBody, enc)
	if err != nil {
		// Fall back to the binary path for this resource: store raw
		// wire bytes rather than dropping the body entirely.
		return res, raw.WireBody, nil
	}

	if !charset.IsTextMime(mimeType) {
		return res, decoded, nil
	}

	resolvedCharset, declared := charset.Resolve(contentType, mimeType, decoded)
	decodeLabel := resolvedCharset
	if decodeLabel == "" {
		decodeLabel = "utf-8"
	}

	text, err := charset.Decode(decoded, decodeLabel)
	if err != nil {
		return res, decoded, nil
	}
	res.ContentCharset = resolvedCharset
	res.ContentCharsetDeclared = declared

	beautified := beautifyByMime(mimeType, text)
	res.Minify = beautify.IsMinified(text, beautified)

	if res.Minify {
		return res, []byte(beautified), nil
	}
	return res, []byte(text), nil
}

func beautifyByMime(mimeType, text string) string {
	switch mimeType {
	case "text/html":
		return beautify.HTML(text)
	case "text/css":
		return beautify.CSS(text)
	case "application/javascript", "text/javascript":
		return beautify.JS(text)
	default:
		return text
	}
}

// ProcessForPlayback runs the inverse of ProcessForRecording: given a
// Resource and the bytes read from its content file, re-encode to the
// original charset (if any) and re-compress to the original
// Content-Encoding (if any), producing the wire body to serve.
func ProcessForPlayback(res *inventory.Resource, fileBytes []byte) ([]byte, error) {
	body := fileBytes

	if res.ContentCharset != "" {
		reencoded, err := charset.Encode(string(fileBytes), res.ContentCharset)
		if err != nil {
			return nil, fmt.Errorf("playback re-encode charset %q: %w", res.ContentCharset, err)
		}
		body = reencoded
	}

	if res.ContentEncoding != "" && res.ContentEncoding != inventory.ContentEncodingIdentity {
		compressed, err := Compress(body, res.ContentEncoding, 6)
		if err != nil {
			return nil, fmt.Errorf("playback re-compress %q: %w", res.ContentEncoding, err)
		}
		body = compressed
	}

	return body, nil
}
