// Package mitm wires goproxy into a transparent HTTPS-intercepting
// proxy: a synthetic CA signs per-host leaf certificates on the fly, so
// the recorder package sees plaintext requests/responses regardless of
// scheme. Playback does not go through this package: the player serves
// plaintext HTTP directly.
package mitm

import (
	"crypto/tls"
	"net/http"

	"github.com/elazarl/goproxy"
	"golang.org/x/net/http2"
)

// Hooks lets callers observe proxied traffic without depending on
// goproxy types directly. OnRequest may return a modified request (for
// example one carrying an httptrace.ClientTrace in its context);
// returning nil is not permitted, the original or a replacement request
// must always be supplied. OnResponse may return a modified response,
// or the same response unchanged. OnFetchError fires instead of
// OnResponse when the upstream round trip itself failed and no response
// was ever received.
type Hooks struct {
	OnRequest    func(r *http.Request) *http.Request
	OnResponse   func(resp *http.Response, req *http.Request) *http.Response
	OnFetchError func(req *http.Request, err error)
}

// Engine is a configured MITM-capable proxy handler.
type Engine struct {
	proxy *goproxy.ProxyHttpServer
}

// NewEngine builds an Engine that intercepts CONNECT tunnels using ca,
// signing per-host leaf certificates out of a bounded cache of
// leafCacheSize entries (0 uses the default). hooks is invoked for
// every proxied request/response pair.
func NewEngine(ca tls.Certificate, leafCacheSize int, hooks Hooks) (*Engine, error) {
	cache, err := newLeafCache(ca, leafCacheSize)
	if err != nil {
		return nil, err
	}

	proxy := goproxy.NewProxyHttpServer()
	proxy.Verbose = false

	tr := &http.Transport{
		TLSClientConfig:   &tls.Config{InsecureSkipVerify: true},
		Proxy:             http.ProxyFromEnvironment,
		ForceAttemptHTTP2: true,
	}
	if err := http2.ConfigureTransport(tr); err != nil {
		return nil, err
	}
	proxy.Tr = tr

	tlsConfigFunc := cache.tlsConfigFunc()
	proxy.OnRequest().HandleConnect(goproxy.FuncHttpsHandler(
		func(host string, ctx *goproxy.ProxyCtx) (*goproxy.ConnectAction, string) {
			return &goproxy.ConnectAction{
				Action:    goproxy.ConnectMitm,
				TLSConfig: tlsConfigFunc,
			}, host
		},
	))

	proxy.OnRequest().DoFunc(func(r *http.Request, ctx *goproxy.ProxyCtx) (*http.Request, *http.Response) {
		if hooks.OnRequest != nil {
			r = hooks.OnRequest(r)
		}
		return r, nil
	})

	proxy.OnResponse().DoFunc(func(resp *http.Response, ctx *goproxy.ProxyCtx) *http.Response {
		if ctx.Req == nil {
			return resp
		}
		if resp == nil {
			if hooks.OnFetchError != nil {
				hooks.OnFetchError(ctx.Req, ctx.Error)
			}
			return resp
		}
		if hooks.OnResponse != nil {
			resp = hooks.OnResponse(resp, ctx.Req)
		}
		return resp
	})

	return &Engine{proxy: proxy}, nil
}

// Handler returns the http.Handler to serve the proxy listener with.
func (e *Engine) Handler() http.Handler {
	return e.proxy
}
