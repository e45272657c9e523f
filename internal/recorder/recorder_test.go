package recorder

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"playbackbox/internal/capture"
)

func newResp(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{},
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func TestFIFOPairingUnderPipelinedRequests(t *testing.T) {
	store := capture.NewStore()
	rec := NewRecorder(store)

	req1 := httptest.NewRequest("GET", "http://example.com/a", nil)
	req1.RemoteAddr = "1.2.3.4:5555"
	req2 := httptest.NewRequest("GET", "http://example.com/b", nil)
	req2.RemoteAddr = "1.2.3.4:5555"

	r1 := rec.HandleRequest(req1)
	r2 := rec.HandleRequest(req2)

	rec.HandleResponse(newResp(200, "one"), r1)
	rec.HandleResponse(newResp(200, "two"), r2)

	items := store.List()
	if len(items) != 2 {
		t.Fatalf("got %d items, want 2", len(items))
	}
	if items[0].URL != "http://example.com/a" {
		t.Fatalf("got first URL %q, want /a", items[0].URL)
	}
	if items[1].URL != "http://example.com/b" {
		t.Fatalf("got second URL %q, want /b", items[1].URL)
	}
	if string(items[0].WireBody) != "one" || string(items[1].WireBody) != "two" {
		t.Fatalf("bodies not paired correctly: %q, %q", items[0].WireBody, items[1].WireBody)
	}
}

func TestFIFOKeepsDistinctPeersSeparate(t *testing.T) {
	store := capture.NewStore()
	rec := NewRecorder(store)

	reqA := httptest.NewRequest("GET", "http://example.com/peerA", nil)
	reqA.RemoteAddr = "10.0.0.1:1111"
	reqB := httptest.NewRequest("GET", "http://example.com/peerB", nil)
	reqB.RemoteAddr = "10.0.0.2:2222"

	rA := rec.HandleRequest(reqA)
	rB := rec.HandleRequest(reqB)

	rec.HandleResponse(newResp(200, "a-body"), rA)
	rec.HandleResponse(newResp(200, "b-body"), rB)

	items := store.List()
	if len(items) != 2 {
		t.Fatalf("got %d items, want 2", len(items))
	}
}

func TestHandleResponseWithNoPendingRequestFabricatesDegradedRecord(t *testing.T) {
	store := capture.NewStore()
	rec := NewRecorder(store)

	req := httptest.NewRequest("GET", "http://example.com/orphan", nil)
	req.RemoteAddr = "9.9.9.9:9999"

	resp := newResp(200, "unpaired")
	out := rec.HandleResponse(resp, req)
	if out != resp {
		t.Fatal("expected the same response to pass through unchanged")
	}
	items := store.List()
	if len(items) != 1 {
		t.Fatalf("got store.Len()=%d, want 1 degraded record for the unpaired response", len(items))
	}
	if items[0].URL != "http://example.com/orphan" {
		t.Fatalf("got URL %q, want the request's own URL", items[0].URL)
	}
	if items[0].ErrorMessage == "" {
		t.Fatal("expected a non-empty ErrorMessage on the degraded record")
	}
}

func TestHandleFetchErrorFabricatesDegradedRecord(t *testing.T) {
	store := capture.NewStore()
	rec := NewRecorder(store)

	req := httptest.NewRequest("GET", "http://example.com/unreachable", nil)
	req.RemoteAddr = "8.8.8.8:8888"

	outReq := rec.HandleRequest(req)
	rec.HandleFetchError(outReq, io.ErrClosedPipe)

	items := store.List()
	if len(items) != 1 {
		t.Fatalf("got %d items, want 1", len(items))
	}
	if items[0].URL != "http://example.com/unreachable" {
		t.Fatalf("got URL %q", items[0].URL)
	}
	if items[0].ErrorMessage == "" {
		t.Fatal("expected a non-empty ErrorMessage on the degraded record")
	}
}
