// Package httpapi serves the answer pipeline over HTTP for browsers,
// scripts and voice shortcut clients.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/custodia-labs/docask/internal/core/ports/driving"
	"github.com/custodia-labs/docask/internal/logger"
)

// ErrMissingAnswerService is returned when no answer service is provided.
var ErrMissingAnswerService = errors.New("httpapi: answer service is required")

// Server is the HTTP API server.
type Server struct {
	router     chi.Router
	answers    driving.AnswerService
	userHeader string
}

// Option configures a Server.
type Option func(*Server)

// WithUserHeader names a request header carrying the user already
// authenticated by a fronting proxy. It is used when a search names no user.
func WithUserHeader(name string) Option {
	return func(s *Server) { s.userHeader = name }
}

// NewServer creates and configures the HTTP server.
func NewServer(answers driving.AnswerService, opts ...Option) (*Server, error) {
	if answers == nil {
		return nil, ErrMissingAnswerService
	}
	s := &Server{answers: answers}
	for _, opt := range opts {
		opt(s)
	}
	s.setupRoutes()
	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(requestLogger)
	if s.userHeader != "" {
		r.Use(sessionUser(s.userHeader))
	}

	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/search", s.handleSearch)
		r.Get("/search/text", s.handleSearchText)
		r.Get("/users", s.handleUsers)
		r.Get("/status", s.handleStatus)
	})

	s.router = r
}

// ListenAndServe serves on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
		// Answers may wait on remote searches plus an LLM call.
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		httpServer.Shutdown(shutdownCtx) //nolint:errcheck
	}()

	logger.Info("HTTP API listening on %s", addr)
	err := httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("OK"))
}
