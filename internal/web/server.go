package web

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/finlearn/papertrade/internal/advisor"
	"github.com/finlearn/papertrade/internal/config"
	"github.com/finlearn/papertrade/internal/ledger"
	"github.com/finlearn/papertrade/internal/logger"
	"github.com/finlearn/papertrade/internal/storage"
)

type Server struct {
	httpServer *http.Server
	ledger     *ledger.Service
	advisor    *advisor.Advisor
	repo       *storage.Repository
	config     *config.Config
	logger     *logger.Logger
}

func NewServer(svc *ledger.Service, adv *advisor.Advisor, repo *storage.Repository, cfg *config.Config, log *logger.Logger) *Server {
	s := &Server{
		ledger:  svc,
		advisor: adv,
		repo:    repo,
		config:  cfg,
		logger:  log,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("POST /api/portfolio", s.handleCreatePortfolio)
	mux.HandleFunc("GET /api/portfolio", s.handleGetPortfolio)
	mux.HandleFunc("GET /api/positions", s.handleGetPositions)
	mux.HandleFunc("POST /api/trades", s.handleExecuteTrade)
	mux.HandleFunc("GET /api/trades", s.handleTradeHistory)
	mux.HandleFunc("GET /api/insights", s.handleInsights)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	return s
}

// Handler exposes the mux for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

func (s *Server) Start() error {
	s.logger.Info("web server starting", "port", s.config.Server.Port)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("web server: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
