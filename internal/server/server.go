// Package server exposes scenario generation over HTTP and a live preview
// WebSocket.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/rs/cors"

	"github.com/paintgalaxy/server/internal/config"
	"github.com/paintgalaxy/server/internal/database"
	"github.com/paintgalaxy/server/internal/logger"
	"github.com/paintgalaxy/server/internal/scenario"
)

// Archive is the part of the scenario archive the HTTP API serves.
type Archive interface {
	GetScenario(id string) (*database.Scenario, error)
	ListScenarios(limit int) ([]*database.Scenario, error)
	FindByFingerprint(fingerprint string) ([]*database.Scenario, error)
	DeleteScenario(id string) error
}

type Server struct {
	cfg          *config.ServerConfig
	service      *scenario.Service
	archive      Archive
	connLimiter  *ConnLimiter
	rateLimiter  *RateLimiter
	clientIPs    *ClientIPs
	previews     previewSet
	httpServer   *http.Server
	shutdownOnce sync.Once
	StartTime    time.Time
}

// NewServer creates a server. archive may be nil, in which case the
// scenario listing endpoints answer 503.
func NewServer(cfg *config.ServerConfig, service *scenario.Service, archive Archive) *Server {
	s := &Server{
		cfg:         cfg,
		service:     service,
		archive:     archive,
		connLimiter: NewConnLimiter(cfg.Connections),
		rateLimiter: NewRateLimiter(cfg.RateLimit),
		StartTime:   time.Now(),
	}
	trusted, err := cfg.TrustedProxyPrefixes()
	if err != nil {
		logger.Warning("Ignoring trusted proxies", "error", err)
		trusted = nil
	}
	s.clientIPs = NewClientIPs(trusted)
	s.httpServer = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler returns the routed, CORS-wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.Handle("POST /api/generate", s.rateLimiter.Middleware(s.clientIPs, http.HandlerFunc(s.handleGenerate)))
	mux.HandleFunc("GET /api/scenarios", s.handleListScenarios)
	mux.HandleFunc("GET /api/scenarios/{id}", s.handleGetScenario)
	mux.HandleFunc("DELETE /api/scenarios/{id}", s.handleDeleteScenario)
	mux.HandleFunc("GET /api/scenarios/{id}/map", s.handleGetScenarioMap)
	mux.HandleFunc("GET /api/scenarios/{id}/verify", s.handleVerifyScenario)
	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("GET /ws", s.handleWebSocketUpgrade)

	return s.corsHandler().Handler(mux)
}

func (s *Server) corsHandler() *cors.Cors {
	origins := s.cfg.WebSocket.AllowedOrigins
	opts := cors.Options{
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
		MaxAge:         600,
	}
	if len(origins) > 0 {
		opts.AllowedOrigins = origins
	} else {
		// Same-origin only: no cross-origin caller is granted access.
		opts.AllowOriginFunc = func(string) bool { return false }
	}
	return cors.New(opts)
}

// Start listens on the configured address and serves until Shutdown.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.cfg.Listen)
	if err != nil {
		return err
	}
	return s.Serve(ln)
}

// Serve serves on ln until Shutdown.
func (s *Server) Serve(ln net.Listener) error {
	logger.Info("HTTP server listening", "address", ln.Addr().String())

	err := s.httpServer.Serve(ln)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown stops accepting requests and waits for in-flight ones.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.Stop()
		err = s.httpServer.Shutdown(ctx)
		closed, perr := s.previews.closeAll(ctx)
		if err == nil {
			err = perr
		}
		logger.Info("Server shutdown complete", "closed_previews", closed)
	})
	return err
}

// GetUptime returns how long the server has been running.
func (s *Server) GetUptime() time.Duration {
	return time.Since(s.StartTime)
}
