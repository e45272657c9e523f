// Package pipeline implements the content pipeline: decompression,
// charset normalization, beautification, and the inverse re-encoding
// path used on playback, per spec.md §4.B.
package pipeline

import (
	"bytes"
	"compress/gzip"
	"compress/zlib"
	"fmt"
	"io"

	"github.com/andybalholm/brotli"

	"playbackbox/internal/inventory"
	"playbackbox/internal/perrors"
)

// Decompress inflates body per enc. identity and compress (the classic
// UNIX codec, for which no ecosystem decoder exists in the retrieved
// pack — see DESIGN.md) pass through unchanged.
func Decompress(body []byte, enc inventory.ContentEncoding) ([]byte, error) {
	switch enc {
	case "", inventory.ContentEncodingIdentity, inventory.ContentEncodingCompress:
		return body, nil

	case inventory.ContentEncodingGzip:
		r, err := gzip.NewReader(bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("gzip decompress: %w", perrors.ErrDecodeFailed)
		}
		defer r.Close()
		out, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("gzip decompress: %w", perrors.ErrDecodeFailed)
		}
		return out, nil

	case inventory.ContentEncodingDeflate:
		// "deflate" on the wire is conventionally zlib-framed (RFC 1950),
		// not raw DEFLATE (RFC 1951); this matches real servers and the
		// teacher's own zlib.NewReader usage for this encoding.
		r, err := zlib.NewReader(bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("deflate decompress: %w", perrors.ErrDecodeFailed)
		}
		defer r.Close()
		out, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("deflate decompress: %w", perrors.ErrDecodeFailed)
		}
		return out, nil

	case inventory.ContentEncodingBrotli:
		r := brotli.NewReader(bytes.NewReader(body))
		out, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("brotli decompress: %w", perrors.ErrDecodeFailed)
		}
		return out, nil

	default:
		return body, nil
	}
}

// Compress deflates decoded into enc at the given gzip/deflate level
// (ignored for brotli, which uses its own quality scale capped to
// comparable effort). Exact byte-for-byte reproduction is not the goal
// (spec.md §4.B) -- the goal is observable semantic + size fidelity.
func Compress(decoded []byte, enc inventory.ContentEncoding, level int) ([]byte, error) {
	switch enc {
	case "", inventory.ContentEncodingIdentity, inventory.ContentEncodingCompress:
		return decoded, nil

	case inventory.ContentEncodingGzip:
		var buf bytes.Buffer
		w, err := gzip.NewWriterLevel(&buf, level)
		if err != nil {
			w = gzip.NewWriter(&buf)
		}
		if _, err := w.Write(decoded); err != nil {
			return nil, fmt.Errorf("gzip compress: %w", perrors.ErrCompressFailed)
		}
		if err := w.Close(); err != nil {
			return nil, fmt.Errorf("gzip compress: %w", perrors.ErrCompressFailed)
		}
		return buf.Bytes(), nil

	case inventory.ContentEncodingDeflate:
		var buf bytes.Buffer
		w, err := zlib.NewWriterLevel(&buf, level)
		if err != nil {
			return nil, fmt.Errorf("deflate compress: %w", perrors.ErrCompressFailed)
		}
		if _, err := w.Write(decoded); err != nil {
			return nil, fmt.Errorf("deflate compress: %w", perrors.ErrCompressFailed)
		}
		if err := w.Close(); err != nil {
			return nil, fmt.Errorf("deflate compress: %w", perrors.ErrCompressFailed)
		}
		return buf.Bytes(), nil

	case inventory.ContentEncodingBrotli:
		var buf bytes.Buffer
		w := brotli.NewWriterLevel(&buf, brotli.DefaultCompression)
		if _, err := w.Write(decoded); err != nil {
			return nil, fmt.Errorf("brotli compress: %w", perrors.ErrCompressFailed)
		}
		if err := w.Close(); err != nil {
			return nil, fmt.Errorf("brotli compress: %w", perrors.ErrCompressFailed)
		}
		return buf.Bytes(), nil

	default:
		return decoded, nil
	}
}

// NormalizeEncoding maps a raw Content-Encoding header value to the enum.
func NormalizeEncoding(headerValue string) inventory.ContentEncoding {
	switch headerValue {
	case "gzip":
		return inventory.ContentEncodingGzip
	case "deflate":
		return inventory.ContentEncodingDeflate
	case "br":
		return inventory.ContentEncodingBrotli
	case "compress":
		return inventory.ContentEncodingCompress
	default:
		return inventory.ContentEncodingIdentity
	}
}
