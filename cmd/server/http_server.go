// file: cmd/server/http_server.go
package server

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/dkoosis/clevermcp/internal/jsonrpc"
	"github.com/dkoosis/clevermcp/internal/logging"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

// NewHTTPRouter mounts the MCP endpoint, a health check and, when enabled, metrics.
func NewHTTPRouter(c *Components, logger logging.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Method(http.MethodPost, "/mcp", jsonrpc.NewHTTPHandler(c.Server, logger,
		jsonrpc.WithHTTPRequestTimeout(c.Config.Server.RequestTimeout)))
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"status":  "ok",
			"name":    c.Config.Server.Name,
			"version": c.Config.Server.Version,
			"uptime":  c.Server.Uptime().Round(time.Second).String(),
		})
	})
	if c.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", c.Metrics.Handler())
	}
	return r
}

// ServeHTTP listens on the configured address until ctx is done, then shuts
// the listener down gracefully.
func ServeHTTP(ctx context.Context, c *Components, logger logging.Logger) error {
	log := logger.WithField("component", "http_server")

	ln, err := net.Listen("tcp", c.Config.Server.Address)
	if err != nil {
		return errors.Wrapf(err, "failed to listen on %s", c.Config.Server.Address)
	}
	srv := &http.Server{
		Handler:           NewHTTPRouter(c, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("MCP server listening on HTTP.", "address", ln.Addr().String())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "HTTP server failed")
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		log.Info("Shutting down HTTP server.")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return errors.Wrap(err, "HTTP server shutdown failed")
		}
		return nil
	})
	return g.Wait()
}
