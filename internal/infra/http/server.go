// File: internal/infra/http/server.go
package http

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server is chatwarden's ops-facing admin surface (SPEC_FULL.md §10.5): a
// liveness probe and a Prometheus scrape endpoint. It never implements the
// owner-facing REST CRUD surface, which spec.md §1 treats as an external
// collaborator.
type Server struct {
	addr   string
	health HealthFunc
	server *http.Server
}

// HealthFunc reports process liveness; a nil error means healthy. cmd/app
// wires this to a ping of the Postgres pool.
type HealthFunc func() error

func NewServer(addr string, health HealthFunc) *Server {
	if health == nil {
		health = func() error { return nil }
	}
	mux := chi.NewRouter()
	mux.Use(middleware.Recoverer)
	mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := health(); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(err.Error()))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.Handle("/metrics", promhttp.Handler())

	return &Server{addr: addr, health: health, server: &http.Server{Addr: addr, Handler: mux}}
}

// Start blocks serving until the server is shut down. Callers typically run
// it in a goroutine and call Shutdown from the main signal-handling path.
func (s *Server) Start() error {
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
