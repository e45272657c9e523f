// Package inventory implements the on-disk inventory format: the JSON
// index plus the content-addressed file tree, and the Resource/Inventory
// types persisted in it.
package inventory

import "time"

// ContentEncoding is the wire-level compression codec of a captured body.
type ContentEncoding string

const (
	ContentEncodingGzip     ContentEncoding = "gzip"
	ContentEncodingDeflate  ContentEncoding = "deflate"
	ContentEncodingBrotli   ContentEncoding = "br"
	ContentEncodingIdentity ContentEncoding = "identity"
	ContentEncodingCompress ContentEncoding = "compress"
)

// HeaderValue is either a single string or an ordered list of strings,
// preserving headers recorded more than once (e.g. Set-Cookie).
type HeaderValue struct {
	single string
	multi  []string
}

// NewHeaderValue builds a HeaderValue from one or more header value strings.
func NewHeaderValue(values ...string) HeaderValue {
	if len(values) == 1 {
		return HeaderValue{single: values[0]}
	}
	return HeaderValue{multi: append([]string(nil), values...)}
}

// Values returns the header's values as a slice, regardless of whether
// it was recorded as a single string or a list.
func (h HeaderValue) Values() []string {
	if h.multi != nil {
		return h.multi
	}
	if h.single != "" || h.multi == nil {
		return []string{h.single}
	}
	return nil
}

// First returns the first (or only) value, or "" if none.
func (h HeaderValue) First() string {
	if h.multi != nil {
		if len(h.multi) > 0 {
			return h.multi[0]
		}
		return ""
	}
	return h.single
}

// Resource is a single persisted record: the normalized request identity,
// the captured response metadata, and a pointer to its body content.
type Resource struct {
	Method string `json:"method"`
	URL    string `json:"url"`

	TTFBMs        int64    `json:"ttfbMs"`
	DownloadEndMs *int64   `json:"downloadEndMs,omitempty"`
	Mbps          *float64 `json:"mbps,omitempty"`

	StatusCode   int    `json:"statusCode,omitempty"`
	ErrorMessage string `json:"errorMessage,omitempty"`

	RawHeaders map[string]HeaderValue `json:"rawHeaders"`

	ContentEncoding ContentEncoding `json:"contentEncoding,omitempty"`
	ContentTypeMime string          `json:"contentTypeMime,omitempty"`
	ContentCharset  string          `json:"contentCharset,omitempty"`

	// ContentCharsetDeclared records whether ContentCharset came from the
	// recorded Content-Type header, as opposed to being sniffed from the
	// body. Playback only echoes a charset parameter on the emitted
	// Content-Type when this is true, so a charset detected purely from
	// content doesn't appear as a header parameter the origin never sent.
	ContentCharsetDeclared bool `json:"contentCharsetDeclared,omitempty"`

	ContentFilePath string `json:"contentFilePath,omitempty"`
	ContentUtf8     string `json:"contentUtf8,omitempty"`
	ContentBase64   string `json:"contentBase64,omitempty"`

	Minify bool `json:"minify,omitempty"`
}

// DeviceType is the informational recording-session tag.
type DeviceType string

const (
	DeviceDesktop DeviceType = "desktop"
	DeviceMobile  DeviceType = "mobile"
)

// DomainInfo records a hostname touched during a recording session and
// when it was first seen. Supplemental metadata not required by playback
// matching; carried from the original Rust source's Domain concept.
type DomainInfo struct {
	Name        string    `json:"name"`
	FirstSeenAt time.Time `json:"firstSeenAt"`
}

// Inventory is the persisted root: the ordered Resource list plus the
// session's entry URL, device tag, and touched-domain metadata.
type Inventory struct {
	EntryURL   string       `json:"entryUrl,omitempty"`
	DeviceType DeviceType   `json:"deviceType,omitempty"`
	Domains    []DomainInfo `json:"domains,omitempty"`
	Resources  []Resource   `json:"resources"`
}
