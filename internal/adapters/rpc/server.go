// Package rpc exposes the conversation panel over JSON-RPC 2.0 on a local
// HTTP listener, plus the Prometheus scrape endpoint.
package rpc

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"craftlink/go-backend/internal/app"
	"craftlink/go-backend/internal/config"
	"craftlink/go-backend/internal/platform/ratelimiter"
)

const DefaultRPCAddr = "127.0.0.1:8790"

type Server struct {
	httpServer *http.Server
	panel      *app.Panel
	log        *slog.Logger
	limiter    *ratelimiter.MapLimiter
}

func NewServer(cfg config.Config, panel *app.Panel, log *slog.Logger, gatherer prometheus.Gatherer) *Server {
	addr := cfg.RPCAddr
	if addr == "" {
		addr = DefaultRPCAddr
	}
	if log == nil {
		log = app.DefaultLogger()
	}

	mux := http.NewServeMux()
	s := &Server{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
		panel:   panel,
		log:     log,
		limiter: newSendLimiter(cfg),
	}
	mux.HandleFunc("/", s.handleRPC)
	if gatherer != nil {
		mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}
	return s
}

// newSendLimiter builds the per-peer throttle applied to message.send.
func newSendLimiter(cfg config.Config) *ratelimiter.MapLimiter {
	return ratelimiter.New(cfg.SendRatePerSecond, cfg.SendBurst, 10*time.Minute)
}

func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// ListenAndServe blocks until the listener fails or Shutdown is called.
func (s *Server) ListenAndServe() error {
	s.log.Info("rpc listening", "addr", s.httpServer.Addr)
	err := s.httpServer.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
