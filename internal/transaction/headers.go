package transaction

import (
	"fmt"
	"net/http"
	"strconv"
)

// hopByHopForEmission lists headers stripped before a response is
// emitted to a playback client, per spec.md §4.C. Unlike the inventory
// package's recording-time drop list it also drops Content-Length
// (recomputed below); of the Proxy-* headers it drops only the three
// named here, whereas the recording-time list drops every Proxy-* header.
var hopByHopForEmission = []string{
	"Transfer-Encoding",
	"Content-Length",
	"Connection",
	"Keep-Alive",
	"Upgrade",
	"TE",
	"Trailer",
	"Proxy-Connection",
	"Proxy-Authorization",
	"Proxy-Authenticate",
	"Host",
}

// SanitizeHeaders drops hop-by-hop headers, re-inserts a correct
// Content-Length, and rewrites Content-Type with the resolved mime and
// charset when known.
func SanitizeHeaders(h http.Header, wireBodyLen int, mimeType, charsetLabel string) http.Header {
	out := make(http.Header, len(h)+1)
	for name, values := range h {
		if isHopByHopForEmission(name) {
			continue
		}
		out[http.CanonicalHeaderKey(name)] = append([]string(nil), values...)
	}

	out.Set("Content-Length", strconv.Itoa(wireBodyLen))

	if mimeType != "" {
		if charsetLabel != "" {
			out.Set("Content-Type", fmt.Sprintf("%s; charset=%s", mimeType, charsetLabel))
		} else {
			out.Set("Content-Type", mimeType)
		}
	}

	return out
}

func isHopByHopForEmission(name string) bool {
	canon := http.CanonicalHeaderKey(name)
	for _, h := range hopByHopForEmission {
		if http.CanonicalHeaderKey(h) == canon {
			return true
		}
	}
	return false
}
