// Package controller contains the controller-specific logic for the HTTP API.
package controller

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"storeplane/internal/controller/handlers"
	"storeplane/internal/controller/middleware"
)

// Server is the HTTP server for the controller API.
type Server struct {
	httpServer *http.Server
}

// New creates a new controller server, wiring every store/audit/metrics/
// health route behind the general rate limiter, with POST /api/stores
// additionally behind the stricter create limiter. The whole mux is further
// wrapped in a recovery middleware (panics become 500s, not crashes) and a
// request-ID middleware (every request gets a correlation id, echoed back
// and attached to the request-scoped logger).
func New(addr string, h *handlers.Handlers, limiter *middleware.RateLimiter, log *slog.Logger, nodeEnv string) *Server {
	mux := http.NewServeMux()

	mux.Handle("GET /api/stores", limiter.General(http.HandlerFunc(h.ListStores)))
	mux.Handle("POST /api/stores", limiter.Create(limiter.General(http.HandlerFunc(h.CreateStore))))
	mux.Handle("GET /api/stores/{id}", limiter.General(http.HandlerFunc(h.GetStore)))
	mux.Handle("DELETE /api/stores/{id}", limiter.General(http.HandlerFunc(h.DeleteStore)))
	mux.Handle("POST /api/stores/{id}/retry", limiter.General(http.HandlerFunc(h.RetryStore)))

	mux.Handle("GET /api/audit", limiter.General(http.HandlerFunc(h.ListAudit)))
	mux.Handle("GET /api/metrics", limiter.General(http.HandlerFunc(h.GetMetrics)))
	mux.Handle("GET /api/health", limiter.General(http.HandlerFunc(h.Health)))

	// Kubernetes probes bypass rate limiting: the kubelet, not a client, is
	// the caller.
	mux.HandleFunc("GET /healthz", h.Healthz)
	mux.HandleFunc("GET /readyz", h.Readyz)

	var handler http.Handler = mux
	handler = middleware.Recover(log, nodeEnv)(handler)
	handler = middleware.RequestID(handler)

	return &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      handler,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
	}
}

// Run starts the HTTP server. It blocks until the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	serverErr := make(chan error, 1)

	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
		shutDownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		return s.Shutdown(shutDownCtx)
	}
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
