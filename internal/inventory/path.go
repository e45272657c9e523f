package inventory

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"net/url"
	"path"
	"strings"
)

const maxInlineQueryLen = 32

// ResourceFilePath computes the content-tree-relative path for a
// (method, url) pair, per the scheme:
//
//	<method>/<scheme>/<host>/<pathSegments>[~<query>][.<hashSuffix>]<ext>
//
// The returned path has no contents/ prefix; ReadContent and
// WriteContent resolve it under the inventory's contents/ directory.
//
// It is a pure function: the same (method, url) always yields the same
// path, which playback relies on to find the body a recording wrote.
func ResourceFilePath(method, rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("resource file path: parse url %q: %w", rawURL, err)
	}

	scheme := strings.ToLower(u.Scheme)
	host := strings.ToLower(u.Host)
	methodSeg := strings.ToLower(method)

	p := u.Path
	if p == "" {
		p = "/index.html"
	} else if strings.HasSuffix(p, "/") {
		p = p + "index.html"
	}
	p = strings.TrimPrefix(p, "/")

	ext := path.Ext(p)
	base := strings.TrimSuffix(p, ext)

	// The 32-char threshold and split point apply to the raw query, not
	// its percent-encoded form, matching the original implementation:
	// encoding only happens after the raw query is split.
	suffix := ""
	if u.RawQuery != "" {
		if len(u.RawQuery) <= maxInlineQueryLen {
			suffix = "~" + url.QueryEscape(u.RawQuery)
		} else {
			head := u.RawQuery[:maxInlineQueryLen]
			rest := u.RawQuery[maxInlineQueryLen:]
			sum := sha1.Sum([]byte(rest))
			suffix = "~" + url.QueryEscape(head) + ".~" + hex.EncodeToString(sum[:])
		}
	}

	full := path.Join(methodSeg, scheme, host, base+suffix+ext)
	return full, nil
}
