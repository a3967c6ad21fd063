package infra

import (
	"context"
	"net/http"
	"time"
)

// HTTPServer binds the service's timeout policy to an http.Server and exposes
// a graceful shutdown hook.
type HTTPServer struct {
	server *http.Server
}

// NewHTTPServer builds the listener for the router. The read timeout covers
// the 22 MiB generation bodies; the header timeout stays short so idle
// connections cannot hold a slot open.
func NewHTTPServer(cfg *Config, handler http.Handler) *HTTPServer {
	return &HTTPServer{server: &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadTimeout:       cfg.HTTPReadTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.HTTPWriteTimeout,
		IdleTimeout:       cfg.HTTPIdleTimeout,
	}}
}

// Addr returns the bound listen address.
func (s *HTTPServer) Addr() string {
	return s.server.Addr
}

// Start serves until Shutdown is called or the listener fails.
func (s *HTTPServer) Start() error {
	return s.server.ListenAndServe()
}

// Shutdown drains in-flight requests within the context deadline.
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
