package player

import (
	"net/http"
	"net/url"
	"strings"
)

// routeKeyForURL derives the (method, path, query) bucket and authority
// for a recorded transaction's original URL.
func routeKeyForURL(method, rawURL string) (routeKey, string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return routeKey{}, "", err
	}
	path := u.Path
	if path == "" {
		path = "/"
	}
	return routeKey{
		method: strings.ToUpper(method),
		path:   path,
		query:  u.RawQuery,
	}, u.Host, nil
}

// routeKeyForRequest derives the same bucket and authority for an
// incoming playback request, using the absolute-URI form if present and
// falling back to the Host header otherwise.
func routeKeyForRequest(r *http.Request) (routeKey, string) {
	path := r.URL.Path
	if path == "" {
		path = "/"
	}
	authority := r.URL.Host
	if authority == "" {
		authority = r.Host
	}
	return routeKey{
		method: strings.ToUpper(r.Method),
		path:   path,
		query:  r.URL.RawQuery,
	}, authority
}
