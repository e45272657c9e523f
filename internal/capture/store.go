// Package capture holds the in-progress, mutex-guarded record of
// responses seen during a recording session, before they are batch-run
// through the content pipeline and persisted as an inventory.
package capture

import (
	"sync"

	"playbackbox/internal/pipeline"
)

// Store is an append-only, concurrency-safe list of raw (not yet
// pipeline-processed) responses accumulated during a single recording
// session. Unlike a bounded ring buffer, a recording session's resource
// count is the thing being measured, so nothing here is evicted;
// lifecycle shutdown is what turns this into a finished Inventory.
type Store struct {
	mu    sync.Mutex
	items []pipeline.RawResponse
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{}
}

// Add appends a raw captured response to the session.
func (s *Store) Add(r pipeline.RawResponse) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, r)
}

// List returns a snapshot of all raw responses recorded so far, in the
// order they were added.
func (s *Store) List() []pipeline.RawResponse {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]pipeline.RawResponse, len(s.items))
	copy(out, s.items)
	return out
}

// Len reports how many responses have been recorded so far.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}
