// Package server exposes the verification engine and wallet operations
// over HTTP.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	txverify "github.com/chainflow/txverify"
	"github.com/chainflow/txverify/config"
	"github.com/chainflow/txverify/logger"
)

// Server is the HTTP front of the verification service.
type Server struct {
	addr    string
	cfg     *config.Config
	engine  *txverify.Engine
	logger  logger.Logger
	server  *http.Server
	metrics bool
}

// New creates a new HTTP server around an engine. If exposeMetrics is true
// a Prometheus /metrics endpoint is mounted.
func New(addr string, cfg *config.Config, engine *txverify.Engine, log logger.Logger, exposeMetrics bool) *Server {
	return &Server{
		addr:    addr,
		cfg:     cfg,
		engine:  engine,
		logger:  log,
		metrics: exposeMetrics,
	}
}

// Start starts the HTTP server and blocks until it exits.
func (s *Server) Start() error {
	mux := http.NewServeMux()

	mux.Handle("POST /api/v1/verify-tx", handleVerifyTransaction(s.engine, s.logger))
	mux.Handle("POST /api/v1/wallets", handleNewWallet(s.engine, s.logger))
	mux.Handle("GET /api/v1/wallets/{address}/balances", handleBalances(s.engine, s.cfg, s.logger))
	mux.Handle("POST /api/v1/transfers", handleTransfer(s.engine, s.logger))

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	if s.metrics {
		mux.Handle("GET /metrics", promhttp.Handler())
	}

	s.server = &http.Server{
		Addr:         s.addr,
		Handler:      corsMiddleware(mux),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info("HTTP server starting", map[string]any{"addr": s.addr})
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// corsMiddleware allows browser clients to call the API from other origins.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
