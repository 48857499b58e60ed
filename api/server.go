package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"property-harvester/services"
	"property-harvester/storage"
	"property-harvester/utils"
)

// Server exposes stored listings over HTTP for the map dashboard.
type Server struct {
	reader   storage.ListingReader
	dataPath string
	insights *services.InsightService
	logger   *utils.Logger
	router   *mux.Router
}

// NewServer builds a server reading from reader. dataPath, when set, is
// served verbatim at /data/properties.json.
func NewServer(reader storage.ListingReader, dataPath string, logger *utils.Logger) *Server {
	s := &Server{
		reader:   reader,
		dataPath: dataPath,
		insights: services.NewInsightService(logger),
		logger:   logger,
		router:   mux.NewRouter(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	s.router.HandleFunc("/api/properties", s.handleList).Methods(http.MethodGet)
	s.router.HandleFunc("/api/properties/{id}", s.handleGet).Methods(http.MethodGet)
	s.router.HandleFunc("/api/stats", s.handleStats).Methods(http.MethodGet)
	s.router.HandleFunc("/data/properties.json", s.handleDataFile).Methods(http.MethodGet)
	s.router.Use(s.logRequests)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	s.logger.Info("[api] listening on %s", addr)

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.logger.Info("[api] shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug("[api] %s %s (%s)", r.Method, r.URL.Path, time.Since(start))
	})
}
