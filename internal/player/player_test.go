package player

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"playbackbox/internal/inventory"
)

func writeTestInventory(t *testing.T, dir string) *inventory.Inventory {
	t.Helper()
	body := []byte("hello world")
	relPath, err := inventory.ResourceFilePath("GET", "http://example.com/hello")
	if err != nil {
		t.Fatal(err)
	}
	if err := inventory.WriteContent(dir, relPath, body); err != nil {
		t.Fatal(err)
	}

	return &inventory.Inventory{
		Resources: []inventory.Resource{
			{
				Method:          "GET",
				URL:             "http://example.com/hello",
				StatusCode:      200,
				ContentFilePath: relPath,
				ContentTypeMime: "text/plain",
				RawHeaders: map[string]inventory.HeaderValue{
					"Content-Type": inventory.NewHeaderValue("text/plain"),
				},
			},
			{
				Method:       "GET",
				URL:          "http://example.com/broken",
				ErrorMessage: "connection reset",
			},
		},
	}
}

func TestPlayerServesMatchedResource(t *testing.T) {
	dir := t.TempDir()
	inv := writeTestInventory(t, dir)

	p, err := NewPlayer(inv, dir)
	if err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest("GET", "http://example.com/hello", nil)
	rec := httptest.NewRecorder()
	p.Handler().ServeHTTP(rec, req)

	if rec.Code != 200 {
		t.Fatalf("got status %d, want 200", rec.Code)
	}
	body, _ := io.ReadAll(rec.Body)
	if string(body) != "hello world" {
		t.Fatalf("got body %q", body)
	}
}

func TestPlayerReturns404ForNoMatch(t *testing.T) {
	dir := t.TempDir()
	inv := writeTestInventory(t, dir)
	p, err := NewPlayer(inv, dir)
	if err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest("GET", "http://example.com/nothing-here", nil)
	rec := httptest.NewRecorder()
	p.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("got status %d, want 404", rec.Code)
	}
}

func TestPlayerReturns500ForErrorTransaction(t *testing.T) {
	dir := t.TempDir()
	inv := writeTestInventory(t, dir)
	p, err := NewPlayer(inv, dir)
	if err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest("GET", "http://example.com/broken", nil)
	rec := httptest.NewRecorder()
	p.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("got status %d, want 500", rec.Code)
	}
}

func TestPlayerMatchesWithoutAuthorityWhenRequestLacksHost(t *testing.T) {
	dir := t.TempDir()
	inv := writeTestInventory(t, dir)
	p, err := NewPlayer(inv, dir)
	if err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest("GET", "/hello", nil)
	req.Host = ""
	req.URL.Host = ""
	rec := httptest.NewRecorder()
	p.Handler().ServeHTTP(rec, req)

	if rec.Code != 200 {
		t.Fatalf("got status %d, want 200", rec.Code)
	}
}
