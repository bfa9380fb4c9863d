// Package httpserver builds the HTTP server with bounded timeouts so slow or
// stalled clients cannot pin connections indefinitely.
package httpserver

import (
	"net/http"
	"time"
)

const readHeaderTimeout = 5 * time.Second

// New builds an HTTP server for the given handler. Write and idle timeouts
// come from configuration; the header read timeout is fixed.
func New(addr string, handler http.Handler, writeTimeout, idleTimeout time.Duration) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
	}
}
