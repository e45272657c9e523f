package charset

import "testing"

func TestResolveFromContentTypeHeader(t *testing.T) {
	cs, declared := Resolve("text/html; charset=Shift_JIS", "text/html", []byte("<html></html>"))
	if cs != "Shift_JIS" {
		t.Fatalf("got %q", cs)
	}
	if !declared {
		t.Fatal("expected declared=true for a header-supplied charset")
	}
}

func TestResolveFromMetaCharset(t *testing.T) {
	body := []byte(`<html><head><meta charset="Shift_JIS"></head></html>`)
	cs, declared := Resolve("text/html", "text/html", body)
	if cs != "Shift_JIS" {
		t.Fatalf("got %q", cs)
	}
	if declared {
		t.Fatal("expected declared=false for a content-sniffed charset")
	}
}

func TestResolveFromMetaHttpEquiv(t *testing.T) {
	body := []byte(`<html><head><meta http-equiv="Content-Type" content="text/html; charset=Shift_JIS"></head></html>`)
	cs, declared := Resolve("text/html", "text/html", body)
	if cs != "Shift_JIS" {
		t.Fatalf("got %q", cs)
	}
	if declared {
		t.Fatal("expected declared=false for a content-sniffed charset")
	}
}

func TestResolveFromCSSCharset(t *testing.T) {
	body := []byte(`@charset "UTF-8";\nbody { color: red; }`)
	cs, declared := Resolve("text/css", "text/css", body)
	if cs != "UTF-8" {
		t.Fatalf("got %q", cs)
	}
	if declared {
		t.Fatal("expected declared=false for a content-sniffed charset")
	}
}

func TestResolveAbsentReturnsEmpty(t *testing.T) {
	cs, declared := Resolve("text/plain", "text/plain", []byte("hello"))
	if cs != "" {
		t.Fatalf("got %q, want empty", cs)
	}
	if declared {
		t.Fatal("expected declared=false when nothing resolves")
	}
}

func TestRoundTripShiftJIS(t *testing.T) {
	const s = "こんにちは"
	enc, err := Encode(s, "Shift_JIS")
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	dec, err := Decode(enc, "Shift_JIS")
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if dec != s {
		t.Fatalf("got %q, want %q", dec, s)
	}
}

func TestDecodeUnrecognizedLabelFallsBackToUTF8(t *testing.T) {
	const s = "hello world"
	out, err := Decode([]byte(s), "not-a-real-charset")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != s {
		t.Fatalf("got %q", out)
	}
}
