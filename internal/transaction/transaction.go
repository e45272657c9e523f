// Package transaction builds the playback-side Transaction model from a
// Resource plus its final wire body, per spec.md §4.C.
package transaction

import (
	"net/http"

	"playbackbox/internal/inventory"
)

const chunkSize = 64 << 10

// defaultMbps is the fallback throughput used when neither
// downloadEndMs nor mbps is present on the Resource.
const defaultMbps = 1.0

// Chunk is a unit of body bytes paired with its relative target
// emission time (milliseconds after TTFB-end).
type Chunk struct {
	Bytes         []byte
	TargetTimeMs  int64
}

// Transaction is the fully materialized, immutable playback-side form
// of a Resource.
type Transaction struct {
	Method        string
	URL           string
	TTFBMs        int64
	StatusCode    int
	ErrorMessage  string
	RawHeaders    http.Header
	Chunks        []Chunk
	TargetCloseMs int64
}

// Build assembles a Transaction from a Resource and its final wire
// body (post re-encode/re-compress), implementing the chunking policy
// of spec.md §4.C.
func Build(res *inventory.Resource, wireBody []byte) Transaction {
	t := Transaction{
		Method:       res.Method,
		URL:          res.URL,
		TTFBMs:       res.TTFBMs,
		StatusCode:   res.StatusCode,
		ErrorMessage: res.ErrorMessage,
	}

	transferMs := transferDurationMs(res, len(wireBody))

	t.Chunks = splitChunks(wireBody, transferMs)
	if len(t.Chunks) == 0 {
		t.TargetCloseMs = 0
	} else {
		t.TargetCloseMs = transferMs
		if t.TargetCloseMs < 1 {
			t.TargetCloseMs = 1
		}
	}

	emittedCharset := ""
	if res.ContentCharsetDeclared {
		emittedCharset = res.ContentCharset
	}
	t.RawHeaders = SanitizeHeaders(rawHeadersToHTTP(res.RawHeaders), len(wireBody), res.ContentTypeMime, emittedCharset)

	return t
}

// transferDurationMs derives T, the body transfer duration, per the
// fallback ladder: downloadEndMs-ttfbMs, else mbps-derived, else the
// 1 Mbit/s default.
func transferDurationMs(res *inventory.Resource, bodyBytes int) int64 {
	if res.DownloadEndMs != nil {
		t := *res.DownloadEndMs - res.TTFBMs
		if t < 0 {
			t = 0
		}
		return t
	}
	mbps := defaultMbps
	if res.Mbps != nil && *res.Mbps > 0 {
		mbps = *res.Mbps
	}
	if bodyBytes == 0 {
		return 0
	}
	return int64(8.0 * float64(bodyBytes) / (mbps * 1e6) * 1000.0)
}

func splitChunks(body []byte, transferMs int64) []Chunk {
	if len(body) == 0 {
		return nil
	}

	total := len(body)
	var chunks []Chunk
	var cumulative int

	for i := 0; i < total; i += chunkSize {
		end := i + chunkSize
		if end > total {
			end = total
		}

		var targetTime int64
		if i == 0 {
			targetTime = 0
		} else {
			targetTime = int64(float64(cumulative) / float64(total) * float64(transferMs))
		}

		chunks = append(chunks, Chunk{
			Bytes:        body[i:end],
			TargetTimeMs: targetTime,
		})
		cumulative = end
	}
	return chunks
}

func rawHeadersToHTTP(raw map[string]inventory.HeaderValue) http.Header {
	h := make(http.Header, len(raw))
	for name, v := range raw {
		h[http.CanonicalHeaderKey(name)] = v.Values()
	}
	return h
}
