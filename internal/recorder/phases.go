package recorder

import (
	"crypto/tls"
	"net/http/httptrace"
	"time"
)

// phases collects the request-start and first-response-byte instants
// for one request (plus whether the origin TLS handshake negotiated h2),
// via httptrace.ClientTrace, the way the teacher's proxy hooks timed
// origin round trips.
type phases struct {
	requestStart time.Time
	firstByte    time.Time
	h2           bool
}

func newPhases() *phases {
	return &phases{requestStart: time.Now()}
}

func (p *phases) clientTrace() *httptrace.ClientTrace {
	return &httptrace.ClientTrace{
		TLSHandshakeDone: func(cs tls.ConnectionState, _ error) {
			p.h2 = cs.NegotiatedProtocol == "h2"
		},
		GotFirstResponseByte: func() {
			p.firstByte = time.Now()
		},
	}
}

func millis(from, to time.Time) int64 {
	if from.IsZero() || to.IsZero() {
		return 0
	}
	return to.Sub(from).Milliseconds()
}
