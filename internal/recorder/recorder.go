// Package recorder pairs proxied requests with their responses during a
// recording session, times each round trip, and hands the raw result to
// the content pipeline's capture store for batch processing at shutdown.
package recorder

import (
	"bytes"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptrace"
	"time"

	"github.com/google/uuid"

	"playbackbox/internal/capture"
	"playbackbox/internal/perrors"
	"playbackbox/internal/pipeline"
)

// pendingRequest is an in-flight request waiting for its response,
// queued per peer connection.
type pendingRequest struct {
	id     uuid.UUID
	method string
	url    string
	phases *phases
}

// Recorder observes a recording-mode proxy's requests and responses.
type Recorder struct {
	store *capture.Store
	fifo  *peerFIFO
}

// NewRecorder returns a Recorder that appends finished captures to store.
func NewRecorder(store *capture.Store) *Recorder {
	return &Recorder{store: store, fifo: newPeerFIFO()}
}

// HandleRequest records the start of a round trip and returns a request
// carrying an httptrace.ClientTrace so HandleResponse can compute
// accurate phase timings.
func (rec *Recorder) HandleRequest(r *http.Request) *http.Request {
	p := newPhases()
	pr := &pendingRequest{
		id:     uuid.New(),
		method: r.Method,
		url:    r.URL.String(),
		phases: p,
	}
	rec.fifo.push(r.RemoteAddr, pr)

	log.Printf("recorder: request %s %s %s [%s]", pr.id, r.Method, r.URL, r.RemoteAddr)

	ctx := httptrace.WithClientTrace(r.Context(), p.clientTrace())
	return r.WithContext(ctx)
}

// HandleResponse pairs resp with the oldest pending request on its peer
// connection, reads and restores the body, and stashes the raw capture.
// If no pending request is found for the peer (the proxy was paused, a
// stray keep-alive response, or a CONNECT tunnel response), resp still
// passes through to the client unchanged, but a degraded record is
// logged and stashed rather than silently dropped.
func (rec *Recorder) HandleResponse(resp *http.Response, req *http.Request) *http.Response {
	pr := rec.fifo.pop(req.RemoteAddr)
	if pr == nil {
		log.Printf("recorder: no pending request paired for peer %s, fabricating degraded record for %s %s",
			req.RemoteAddr, req.Method, req.URL)
		rec.store.Add(pipeline.RawResponse{
			Method:       req.Method,
			URL:          req.URL.String(),
			StatusCode:   resp.StatusCode,
			Headers:      resp.Header,
			ErrorMessage: fmt.Sprintf("%v: no paired request for peer %s", perrors.ErrNoMatch, req.RemoteAddr),
		})
		return resp
	}

	var body []byte
	if resp.Body != nil {
		b, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			log.Printf("recorder: %s %v: %v", pr.id, perrors.ErrBodyRead, err)
			b = nil
		}
		body = b
	}
	resp.Body = io.NopCloser(bytes.NewReader(body))

	// downloadEnd must be measured after the body is fully buffered, not
	// when the response headers arrive, or every transfer duration
	// collapses to ~0 and playback loses its timing fidelity.
	downloadEnd := time.Now()

	ttfbMs := millis(pr.phases.requestStart, pr.phases.firstByte)
	downloadEndMs := millis(pr.phases.requestStart, downloadEnd)

	raw := pipeline.RawResponse{
		Method:        pr.method,
		URL:           pr.url,
		TTFBMs:        ttfbMs,
		DownloadEndMs: &downloadEndMs,
		StatusCode:    resp.StatusCode,
		Headers:       resp.Header,
		WireBody:      body,
	}
	rec.store.Add(raw)

	log.Printf("recorder: response %s %s -> %d (%d bytes)", pr.id, pr.url, resp.StatusCode, len(body))
	return resp
}

// HandleFetchError fabricates a degraded record for a request whose
// upstream round trip failed outright (DNS failure, connection refused,
// TLS error to the origin) before any response was received.
func (rec *Recorder) HandleFetchError(req *http.Request, err error) {
	pr := rec.fifo.pop(req.RemoteAddr)
	method, url := req.Method, req.URL.String()
	if pr != nil {
		method, url = pr.method, pr.url
	}
	log.Printf("recorder: %v for %s %s: %v", perrors.ErrUpstreamFetch, method, url, err)
	rec.store.Add(pipeline.RawResponse{
		Method:       method,
		URL:          url,
		ErrorMessage: fmt.Sprintf("%v: %v", perrors.ErrUpstreamFetch, err),
	})
}
