package lifecycle

import (
	"context"
	"net/http"
)

// ControlPort serves the optional shutdown endpoint on its own
// listener: a second http.Server rather than a method/path branch on
// the main listener's handler, since spec.md §4.G requires shutdown to
// be reachable on a dedicated port, distinct from the teacher's
// single-port CONNECT-vs-everything-else dispatch in main.go.
type ControlPort struct {
	server *http.Server
}

// NewControlPort builds a control-port server listening on addr. cancel
// is invoked when POST /_shutdown is received; every other method or
// path returns 404.
func NewControlPort(addr string, cancel context.CancelFunc) *ControlPort {
	mux := http.NewServeMux()
	mux.HandleFunc("/_shutdown", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.NotFound(w, r)
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("Shutting down..."))
		cancel()
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	return &ControlPort{server: &http.Server{Addr: addr, Handler: mux}}
}

// ListenAndServe starts the control port; it blocks until the server is
// shut down or fails to bind.
func (c *ControlPort) ListenAndServe() error {
	return c.server.ListenAndServe()
}

// Close shuts down the control port's listener immediately.
func (c *ControlPort) Close() error {
	return c.server.Close()
}
