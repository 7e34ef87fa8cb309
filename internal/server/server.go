// Package server provides the HTTP facade for cearch: request parsing, route
// dispatch, and JSON marshalling over the index and query engine.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/aumeinctutw1/cearch/internal/index"
	"github.com/aumeinctutw1/cearch/internal/query"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// Server is the HTTP server exposing the query, document, and statistics API.
type Server struct {
	idx    *index.Index
	engine *query.Engine
	addr   string
	logger *zap.Logger
	srv    *http.Server
}

// New creates a Server bound to host:port, serving queries against idx via
// engine. logger may be nil.
func New(idx *index.Index, engine *query.Engine, host string, port int, logger *zap.Logger) *Server {
	return &Server{
		idx:    idx,
		engine: engine,
		addr:   fmt.Sprintf("%s:%d", host, port),
		logger: logger,
	}
}

func (s *Server) router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(middleware.Compress(5))

	r.Post("/query", s.handleQuery)
	r.Get("/document/{docid}", s.handleGetDocument)
	r.Get("/statistics", s.handleStatistics)
	r.Post("/index", s.handleIndexReserved)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte("404 Not Found"))
	})
	return r
}

// Start starts the HTTP server and blocks until it stops or fails.
func (s *Server) Start() error {
	s.srv = &http.Server{
		Addr:    s.addr,
		Handler: s.router(),
	}
	if s.logger != nil {
		s.logger.Info("starting server", zap.String("addr", s.addr))
	}
	return s.srv.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}
