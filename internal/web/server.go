package web

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"wsbtracker/internal/metrics"
	"wsbtracker/internal/store"
)

// Server is the read-only status API. It serves the snapshots the daemon
// writes, so it can run inside the daemon or on its own.
type Server struct {
	store     *store.Store
	emaPeriod int
	topN      int
	metrics   *metrics.Metrics
	log       *zap.SugaredLogger
	srv       *http.Server
}

// NewServer creates a status server over a snapshot store
func NewServer(st *store.Store, emaPeriod, topN int, m *metrics.Metrics, log *zap.SugaredLogger) *Server {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Server{
		store:     st,
		emaPeriod: emaPeriod,
		topN:      topN,
		metrics:   m,
		log:       log,
	}
}

// Handler returns the routed API
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/sentiment", s.handleSentiment)
	mux.HandleFunc("/api/top", s.handleTop)
	mux.HandleFunc("/api/ema", s.handleEma)
	mux.HandleFunc("/api/watchlist", s.handleWatchlist)
	mux.HandleFunc("/api/summary", s.handleSummary)
	if s.metrics != nil {
		mux.Handle("/metrics", s.metrics.Handler())
	}

	return corsMiddleware(mux)
}

// Start serves on addr until Shutdown
func (s *Server) Start(addr string) error {
	s.srv = &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	s.log.Infow("status server listening", "addr", addr)

	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.srv != nil {
		return s.srv.Shutdown(ctx)
	}
	return nil
}

// corsMiddleware allows browser dashboards on other origins to poll the API
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
