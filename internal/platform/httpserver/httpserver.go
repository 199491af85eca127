package httpserver

import (
	"net/http"
	"time"
)

// Event routes block on the per-user sequence, which is bounded by the 5s
// sync SLA. The write timeout leaves headroom above that bound so a slow
// sequence surfaces as a 503 from the handler, not a dropped connection.
const (
	readHeaderTimeout = 5 * time.Second
	readTimeout       = 10 * time.Second
	writeTimeout      = 15 * time.Second
	idleTimeout       = 120 * time.Second
)

// New builds the API server with timeouts sized to the event pipeline.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
	}
}
