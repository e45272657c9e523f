// Package player serves a recorded inventory back to a plaintext HTTP
// client, reproducing each response's original status, headers, and
// chunk timing, per spec.md §4.F.
package player

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"playbackbox/internal/inventory"
	"playbackbox/internal/perrors"
	"playbackbox/internal/pipeline"
	"playbackbox/internal/transaction"
)

// candidate pairs a Transaction with the authority it was recorded
// under, so the matcher can apply the authority best-effort rule.
type candidate struct {
	authority string
	tr        *transaction.Transaction
}

// routeKey is the (method, path, query) bucket every candidate for a
// request is grouped under; authority discrimination happens within
// the bucket at match time, not in the key, since two resources can
// share a route but differ only by host.
type routeKey struct {
	method string
	path   string
	query  string
}

// Player serves transactions built once at startup from a loaded
// Inventory; it holds no mutable state after NewPlayer returns.
type Player struct {
	routes map[routeKey][]candidate
}

// NewPlayer runs the content pipeline in reverse for every resource in
// inv (re-encoding charset and re-compressing), builds the immutable
// Transaction list, and indexes it for request matching.
func NewPlayer(inv *inventory.Inventory, baseDir string) (*Player, error) {
	p := &Player{routes: make(map[routeKey][]candidate)}

	for i := range inv.Resources {
		res := &inv.Resources[i]

		var fileBytes []byte
		if res.ContentFilePath != "" {
			b, err := inventory.ReadContent(baseDir, res.ContentFilePath)
			if err != nil {
				return nil, fmt.Errorf("load content for %s %s: %w", res.Method, res.URL, err)
			}
			fileBytes = b
		}

		wireBody, err := pipeline.ProcessForPlayback(res, fileBytes)
		if err != nil {
			return nil, fmt.Errorf("playback pipeline for %s %s: %w", res.Method, res.URL, err)
		}

		tr := transaction.Build(res, wireBody)

		key, authority, err := routeKeyForURL(tr.Method, tr.URL)
		if err != nil {
			log.Printf("player: skipping unparseable resource URL %q: %v", tr.URL, err)
			continue
		}

		trCopy := tr
		p.routes[key] = append(p.routes[key], candidate{authority: authority, tr: &trCopy})
	}

	return p, nil
}

// Handler returns the http.Handler that matches, schedules, and emits
// responses for incoming plaintext requests.
func (p *Player) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key, authority := routeKeyForRequest(r)

		tr := p.match(key, authority)
		if tr == nil {
			http.Error(w, fmt.Sprintf("%v: %s %s", perrors.ErrNoMatch, r.Method, r.URL.String()), http.StatusNotFound)
			return
		}
		if tr.ErrorMessage != "" {
			http.Error(w, tr.ErrorMessage, http.StatusInternalServerError)
			return
		}

		serveTransaction(w, tr)
	})
}

// match finds the first transaction in the route's bucket whose
// authority is compatible with the request's: an exact match when both
// carry one, or any entry when either side lacks an authority
// (backward-compat for inventories captured before authority was
// recorded), per spec.md §4.F.
func (p *Player) match(key routeKey, authority string) *transaction.Transaction {
	for _, c := range p.routes[key] {
		if authority == "" || c.authority == "" || authority == c.authority {
			return c.tr
		}
	}
	return nil
}

func serveTransaction(w http.ResponseWriter, tr *transaction.Transaction) {
	time.Sleep(time.Duration(tr.TTFBMs) * time.Millisecond)

	header := w.Header()
	for name, values := range tr.RawHeaders {
		for _, v := range values {
			header.Add(name, v)
		}
	}
	w.WriteHeader(statusOrDefault(tr.StatusCode))

	ttfbEnd := time.Now()
	flusher, canFlush := w.(http.Flusher)

	for _, chunk := range tr.Chunks {
		elapsed := time.Since(ttfbEnd).Milliseconds()
		if target := chunk.TargetTimeMs; elapsed < target {
			time.Sleep(time.Duration(target-elapsed) * time.Millisecond)
		}
		if _, err := w.Write(chunk.Bytes); err != nil {
			log.Printf("player: write interrupted for %s %s: %v", tr.Method, tr.URL, err)
			return
		}
		if canFlush {
			flusher.Flush()
		}
	}

	elapsed := time.Since(ttfbEnd).Milliseconds()
	if tr.TargetCloseMs > elapsed {
		time.Sleep(time.Duration(tr.TargetCloseMs-elapsed) * time.Millisecond)
	}
}

func statusOrDefault(code int) int {
	if code == 0 {
		return http.StatusOK
	}
	return code
}
