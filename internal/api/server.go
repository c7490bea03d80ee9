// Package api serves a read-only HTTP preview of the rendered catalog.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/alevsk/meshgen/internal/catalog"
	"github.com/alevsk/meshgen/internal/config"
	"github.com/alevsk/meshgen/internal/formatter"
	"github.com/alevsk/meshgen/internal/logger"
	"github.com/gorilla/mux"
)

// Server represents the API server
type Server struct {
	router  *mux.Router
	catalog *catalog.Catalog
	values  catalog.Values
	timeout time.Duration
}

// NewServer creates a new API server instance for the given configuration
func NewServer(cfg *config.Config) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("%w: configuration cannot be nil", config.ErrInvalidConfig)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	c, err := catalog.New(cfg.Profile)
	if err != nil {
		return nil, err
	}

	s := &Server{
		router:  mux.NewRouter(),
		catalog: c,
		values:  catalog.ValuesFrom(cfg),
		timeout: cfg.Server.Timeout,
	}
	s.routes()
	return s, nil
}

// routes sets up the API routes
func (s *Server) routes() {
	s.router.HandleFunc("/api/v1/health", s.healthCheck).Methods(http.MethodGet)
	s.router.HandleFunc("/api/v1/catalog", s.listCatalog).Methods(http.MethodGet)
	s.router.HandleFunc("/api/v1/render/{path:.+}", s.renderPath).Methods(http.MethodGet)
}

// Handler returns the router serving every route
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Start(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: s.timeout,
		WriteTimeout:      s.timeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", addr).Str("profile", string(s.catalog.Profile())).Msg("Starting preview server")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		logger.Info().Msg("Shutting down preview server")
		return srv.Shutdown(shutdownCtx)
	}
}

// healthCheck handles the health check endpoint
func (s *Server) healthCheck(w http.ResponseWriter, r *http.Request) {
	if err := json.NewEncoder(w).Encode(map[string]string{
		"status": "healthy",
	}); err != nil {
		logger.Error().Err(err).Msg("Failed to encode health check response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
}

// listCatalog returns the catalog entries; ?output=yaml switches the encoding
func (s *Server) listCatalog(w http.ResponseWriter, r *http.Request) {
	contentType := "application/json"
	ft := formatter.TypeJSON
	if r.URL.Query().Get("output") == string(formatter.TypeYAML) {
		contentType = "text/yaml; charset=utf-8"
		ft = formatter.TypeYAML
	}

	f, err := formatter.NewFormatter(ft, nil)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	out, err := f.FormatCatalog(s.catalog)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to format catalog")
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", contentType)
	_, _ = w.Write([]byte(out))
}

// renderPath returns the rendered content of one templated catalog path
func (s *Server) renderPath(w http.ResponseWriter, r *http.Request) {
	p := mux.Vars(r)["path"]

	file, err := s.catalog.RenderPath(p, s.values)
	if err != nil {
		if errors.Is(err, catalog.ErrUnknownPath) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		logger.Error().Err(err).Str("path", p).Msg("Failed to render catalog path")
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	logger.Debug().Str("path", p).Int("bytes", len(file.Content)).Msg("Rendered catalog path")
	w.Header().Set("Content-Type", "text/yaml; charset=utf-8")
	_, _ = w.Write(file.Content)
}
