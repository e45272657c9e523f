package capture

import (
	"sync"
	"testing"

	"playbackbox/internal/pipeline"
)

func TestAddAndList(t *testing.T) {
	s := NewStore()
	s.Add(pipeline.RawResponse{Method: "GET", URL: "https://example.com/a"})
	s.Add(pipeline.RawResponse{Method: "GET", URL: "https://example.com/b"})

	list := s.List()
	if len(list) != 2 {
		t.Fatalf("got %d resources, want 2", len(list))
	}
	if list[0].URL != "https://example.com/a" || list[1].URL != "https://example.com/b" {
		t.Fatalf("unexpected order: %+v", list)
	}
	if s.Len() != 2 {
		t.Fatalf("got Len()=%d, want 2", s.Len())
	}
}

func TestConcurrentAdd(t *testing.T) {
	s := NewStore()
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s.Add(pipeline.RawResponse{Method: "GET", URL: "https://example.com/x"})
		}(i)
	}
	wg.Wait()
	if s.Len() != 100 {
		t.Fatalf("got %d, want 100", s.Len())
	}
}

func TestListReturnsIndependentSnapshot(t *testing.T) {
	s := NewStore()
	s.Add(pipeline.RawResponse{URL: "https://example.com/a"})
	list := s.List()
	list[0].URL = "mutated"
	if s.List()[0].URL != "https://example.com/a" {
		t.Fatal("List() snapshot should not alias internal storage")
	}
}
