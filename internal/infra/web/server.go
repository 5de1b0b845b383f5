// File: internal/infra/web/server.go
package web

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"telegram-group-warden/internal/config"
)

// Server is the ops surface: liveness and Prometheus metrics. It carries no
// bot functionality and binds to the admin port only.
type Server struct {
	cfg    *config.AdminConfig
	log    *zerolog.Logger
	server *http.Server
}

func NewServer(cfg *config.AdminConfig, logger *zerolog.Logger) *Server {
	webLog := logger.With().Str("component", "WebServer").Logger()
	return &Server{cfg: cfg, log: &webLog}
}

func (s *Server) Start() error {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Handle("/metrics", promhttp.Handler())

	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	s.log.Info().Int("port", s.cfg.Port).Msg("ops server listening")
	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}
