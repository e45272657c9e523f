// Package perrors defines the error taxonomy shared across the proxy's
// recording and playback paths.
package perrors

import "errors"

// Sentinel errors. Call sites wrap these with fmt.Errorf("...: %w", err)
// so callers can still errors.Is against the taxonomy.
var (
	ErrBindFailed        = errors.New("bind failed")
	ErrCaCreationFailed  = errors.New("ca creation failed")
	ErrTLSHandshakeFailed = errors.New("tls handshake failed")
	ErrUpstreamFetch     = errors.New("upstream fetch failed")
	ErrBodyRead          = errors.New("body read error")
	ErrMissingInventory  = errors.New("inventory missing")
	ErrMalformedInventory = errors.New("inventory malformed")
	ErrNoMatch           = errors.New("no matching transaction")
	ErrDecodeFailed      = errors.New("decode failed")
	ErrCompressFailed    = errors.New("compress failed")
	ErrFileIO            = errors.New("file io error")
)
