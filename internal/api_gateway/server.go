package api_gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/personal-ledger/internal/api_gateway/handler"
	"github.com/personal-ledger/internal/api_gateway/service"
	"github.com/personal-ledger/internal/config"
)

// Server handles HTTP requests and manages the application's lifecycle
type Server struct {
	logger     *slog.Logger
	httpServer *http.Server
	httpRouter *gin.Engine
}

// Services are the dependencies of the HTTP layer. Commands and Archive may be
// nil, in which case their routes are not registered.
type Services struct {
	Ledger   service.LedgerService
	Commands service.CommandService
	Archive  service.ArchiveService
}

// NewServer creates and configures a new HTTP server with the given services
func NewServer(log *slog.Logger, cfg *config.Config, services Services) *Server {
	if cfg.Application.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	httpRouter := gin.New()

	h := handlers{
		accounts: handler.NewAccountHandler(log, services.Ledger, handler.Defaults{
			HistoryLimit:   cfg.Ledger.HistoryLimit,
			StatisticsDays: cfg.Ledger.StatisticsDays,
		}),
		transactions: handler.NewTransactionHandler(log, services.Ledger),
	}
	if services.Commands != nil {
		h.commands = handler.NewCommandHandler(log, services.Commands)
	}
	if services.Archive != nil {
		h.archive = handler.NewArchiveHandler(log, services.Archive)
	}

	setupRouter(log, httpRouter, h)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      httpRouter,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return &Server{
		logger:     log,
		httpServer: httpServer,
		httpRouter: httpRouter,
	}
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.httpRouter
}

// Start begins listening for HTTP requests
func (s *Server) Start() error {
	s.logger.Info("Starting HTTP server", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}
	return nil
}

// Stop drains in-flight requests until ctx expires
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Stopping HTTP server")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to stop HTTP server: %w", err)
	}
	return nil
}
