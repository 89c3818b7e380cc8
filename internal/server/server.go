// Package server exposes the question-answering service over HTTP: a single
// embedded page for the browser and a small JSON API underneath it.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"santerag/internal/domain"
	"santerag/internal/logger"
)

// Config holds HTTP server configuration.
type Config struct {
	Addr         string
	CORSOrigins  []string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// QAPort is the server-facing subset of the QA service.
type QAPort interface {
	Ask(question string) (domain.Answer, error)
	Documents() []domain.Document
	Ready() bool
}

// Server wraps a chi router around the QA service.
type Server struct {
	router *chi.Mux
	svc    QAPort
	cfg    Config
}

// New creates a Server with routing, recovery and CORS middleware.
func New(cfg Config, svc QAPort) (*Server, error) {
	if cfg.Addr == "" {
		return nil, fmt.Errorf("listen address is required")
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = 30 * time.Second
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = 60 * time.Second
	}

	s := &Server{router: chi.NewRouter(), svc: svc, cfg: cfg}

	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RealIP)
	s.router.Use(corsMiddleware(cfg.CORSOrigins))

	s.router.Get("/", s.handlePage)
	s.router.Get("/healthz", s.handleHealth)
	s.router.Route("/api", func(r chi.Router) {
		r.Post("/ask", s.handleAsk)
		r.Get("/documents", s.handleDocuments)
	})

	return s, nil
}

// Handler returns the underlying http.Handler for testing.
func (s *Server) Handler() http.Handler { return s.router }

// Start runs the HTTP server and blocks until the context is cancelled,
// then performs graceful shutdown.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.cfg.Addr, err)
	}

	srv := &http.Server{
		Handler:      s.router,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("serving on %s", ln.Addr())
		errCh <- srv.Serve(ln)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutting down: %w", err)
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func corsMiddleware(origins []string) func(http.Handler) http.Handler {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	})
}
