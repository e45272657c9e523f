package pipeline

import (
	"bytes"
	"compress/gzip"
	"net/http"
	"testing"

	"playbackbox/internal/inventory"
)

func gzipBytes(t *testing.T, s string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	if _, err := w.Write([]byte(s)); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestProcessForRecordingMinifiedHTML(t *testing.T) {
	h := http.Header{}
	h.Set("Content-Type", "text/html")
	raw := RawResponse{
		Method:     "GET",
		URL:        "https://example.com/",
		StatusCode: 200,
		Headers:    h,
		WireBody:   []byte(`<html><head><title>Hi</title></head><body><p>Hello</p></body></html>`),
	}
	res, content, err := ProcessForRecording(raw)
	if err != nil {
		t.Fatal(err)
	}
	if !res.Minify {
		t.Fatal("expected minify=true for one-line HTML")
	}
	if !bytes.Contains(content, []byte("\n")) {
		t.Fatalf("expected beautified multi-line content, got %q", content)
	}
}

func TestProcessForRecordingGzipRoundTrip(t *testing.T) {
	original := `<html><body><p>Hi there</p></body></html>`
	h := http.Header{}
	h.Set("Content-Type", "text/html")
	h.Set("Content-Encoding", "gzip")
	raw := RawResponse{
		Method:     "GET",
		URL:        "https://example.com/",
		StatusCode: 200,
		Headers:    h,
		WireBody:   gzipBytes(t, original),
	}
	res, _, err := ProcessForRecording(raw)
	if err != nil {
		t.Fatal(err)
	}
	if res.ContentEncoding != inventory.ContentEncodingGzip {
		t.Fatalf("got %q", res.ContentEncoding)
	}
}

func TestProcessForPlaybackRecompressesGzip(t *testing.T) {
	res := &inventory.Resource{
		ContentEncoding: inventory.ContentEncodingGzip,
	}
	wire, err := ProcessForPlayback(res, []byte("hello world"))
	if err != nil {
		t.Fatal(err)
	}
	decoded, err := Decompress(wire, inventory.ContentEncodingGzip)
	if err != nil {
		t.Fatal(err)
	}
	if string(decoded) != "hello world" {
		t.Fatalf("got %q", decoded)
	}
}

func TestProcessForPlaybackReencodesCharset(t *testing.T) {
	res := &inventory.Resource{
		ContentCharset: "Shift_JIS",
	}
	const s = "こんにちは"
	wire, err := ProcessForPlayback(res, []byte(s))
	if err != nil {
		t.Fatal(err)
	}
	if bytes.Equal(wire, []byte(s)) {
		t.Fatal("expected re-encoded bytes to differ from UTF-8 source")
	}
}

func TestDeflateRoundTrip(t *testing.T) {
	original := []byte("the quick brown fox jumps over the lazy dog")
	compressed, err := Compress(original, inventory.ContentEncodingDeflate, 6)
	if err != nil {
		t.Fatal(err)
	}
	decoded, err := Decompress(compressed, inventory.ContentEncodingDeflate)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(decoded, original) {
		t.Fatalf("got %q, want %q", decoded, original)
	}
}

func TestBrotliRoundTrip(t *testing.T) {
	original := []byte("the quick brown fox jumps over the lazy dog")
	compressed, err := Compress(original, inventory.ContentEncodingBrotli, 6)
	if err != nil {
		t.Fatal(err)
	}
	decoded, err := Decompress(compressed, inventory.ContentEncodingBrotli)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(decoded, original) {
		t.Fatalf("got %q, want %q", decoded, original)
	}
}
