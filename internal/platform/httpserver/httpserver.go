package httpserver

import (
	"net/http"
	"time"
)

// New builds an HTTP server with the timeouts used for audit traffic. Write
// timeout leaves room for a full batch.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      2 * time.Minute,
		IdleTimeout:       time.Minute,
	}
}
