package inventory

import (
	"net/http"
	"strings"
)

// hopByHopForRecording lists headers that must never be persisted in
// rawHeaders, per spec.md §3, plus any header whose name starts with
// Proxy- (see isHopByHopForRecording). Distinct from the
// transaction-emission drop list, which additionally strips
// Content-Length since that is recomputed for the playback wire body.
var hopByHopForRecording = []string{
	"Connection",
	"Keep-Alive",
	"Transfer-Encoding",
	"TE",
	"Trailer",
	"Upgrade",
	"Host",
}

func isHopByHopForRecording(name string) bool {
	if strings.HasPrefix(strings.ToLower(name), "proxy-") {
		return true
	}
	for _, h := range hopByHopForRecording {
		if strings.EqualFold(h, name) {
			return true
		}
	}
	return false
}

// BuildRawHeaders converts an http.Header into the persisted rawHeaders
// form, coalescing repeated values and dropping hop-by-hop headers.
func BuildRawHeaders(h http.Header) map[string]HeaderValue {
	out := make(map[string]HeaderValue, len(h))
	for name, values := range h {
		if isHopByHopForRecording(name) || len(values) == 0 {
			continue
		}
		out[name] = NewHeaderValue(values...)
	}
	return out
}
