package httpserver

import (
	"net/http"
	"time"
)

// New builds an HTTP server for the payment API. Header and idle timeouts
// bound slow or abandoned clients; request bodies are small JSON documents so
// no separate read timeout is set.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}
