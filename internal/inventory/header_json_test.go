package inventory

import (
	"encoding/json"
	"testing"
)

func TestHeaderValueJSONRoundTrip(t *testing.T) {
	cases := []HeaderValue{
		NewHeaderValue("text/html"),
		NewHeaderValue("a=1", "b=2"),
	}
	for _, hv := range cases {
		b, err := json.Marshal(hv)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		var out HeaderValue
		if err := json.Unmarshal(b, &out); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if len(out.Values()) != len(hv.Values()) {
			t.Fatalf("values length mismatch: got %v want %v", out.Values(), hv.Values())
		}
		for i, v := range hv.Values() {
			if out.Values()[i] != v {
				t.Fatalf("value[%d]: got %q want %q", i, out.Values()[i], v)
			}
		}
	}
}

func TestHeaderValueSingleMarshalsAsString(t *testing.T) {
	hv := NewHeaderValue("text/html")
	b, err := json.Marshal(hv)
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != `"text/html"` {
		t.Fatalf("got %s, want bare string", b)
	}
}

func TestHeaderValueMultiMarshalsAsArray(t *testing.T) {
	hv := NewHeaderValue("a=1", "b=2")
	b, err := json.Marshal(hv)
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != `["a=1","b=2"]` {
		t.Fatalf("got %s, want array", b)
	}
}
