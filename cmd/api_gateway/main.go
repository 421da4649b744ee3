package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/personal-ledger/internal/account_manager"
	"github.com/personal-ledger/internal/api_gateway"
	"github.com/personal-ledger/internal/api_gateway/service"
	"github.com/personal-ledger/internal/config"
	"github.com/personal-ledger/internal/data/mongo"
	"github.com/personal-ledger/internal/data/postgres"
	"github.com/personal-ledger/internal/domain/account"
	"github.com/personal-ledger/internal/logger"
	"github.com/personal-ledger/internal/platform/messaging/producers"
	"github.com/personal-ledger/internal/platform/persistence"
)

func main() {
	// Create base context with cancellation
	appCtx, cancelAppCtx := context.WithCancel(context.Background())
	defer cancelAppCtx()

	// Initialize configuration
	cfg, err := config.LoadConfig("api_gateway")
	if err != nil {
		// logger is not initialized yet, so we use fmt
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.NewLogger(cfg)

	location, err := cfg.Ledger.Location()
	if err != nil {
		log.Error("Invalid ledger timezone", "error", err)
		os.Exit(1)
	}

	// Initialize databases with app context; PostgreSQL applies pending migrations on open
	postgresDB, err := persistence.NewPostgresDB(appCtx, log, &cfg.Postgres)
	if err != nil {
		log.Error("Failed to initialize PostgreSQL", "error", err)
		os.Exit(1)
	}

	mongoDB, err := persistence.NewMongoDB(appCtx, log, &cfg.MongoDB)
	if err != nil {
		log.Error("Failed to initialize MongoDB", "error", err)
		os.Exit(1)
	}

	// Initialize Kafka producer for asynchronous ledger commands
	commandProducer, err := producers.NewCommandProducer(log, &cfg.Kafka)
	if err != nil {
		log.Error("Failed to initialize command Kafka producer", "error", err)
		os.Exit(1)
	}

	// Initialize the ledger engine over the PostgreSQL store
	store := postgres.NewStore(log, postgresDB, cfg.Ledger)
	manager := account_manager.NewManager(store, log,
		account_manager.WithLocation(location),
		account_manager.WithNumberGenerator(account.NewNumberGenerator(cfg.Ledger.AccountNumberPrefix)),
	)

	// Initialize repositories and services
	archiveRepo := mongo.NewArchiveRepository(log, mongoDB.Database())
	services := api_gateway.Services{
		Ledger:   manager,
		Commands: service.NewCommandService(log, commandProducer),
		Archive:  service.NewArchiveService(log, archiveRepo),
	}

	// Initialize REST server
	server := api_gateway.NewServer(log, cfg, services)
	log.Info("REST server initialized")

	// Create error channel for server errors
	errChan := make(chan error, 1)

	// Start server in goroutine
	go func() {
		if err := server.Start(); err != nil {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// Set up signal handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	// Wait for a shutdown signal or error
	var serverErr error
	select {
	case <-quit:
		log.Info("Shutdown signal received")
	case err := <-errChan:
		log.Error("Server error occurred", "error", err)
		serverErr = err
	}

	// Cancel the application context
	cancelAppCtx()

	// Create a shutdown context with timeout
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelShutdown()

	log.Info("Starting graceful shutdown...")

	// Stop accepting requests before the store goes away
	var shutdownErr error
	if err := server.Stop(shutdownCtx); err != nil {
		log.Error("Error during server shutdown", "error", err)
		shutdownErr = err
	}

	if err := commandProducer.Close(); err != nil {
		log.Error("Error closing Kafka producer", "error", err)
		shutdownErr = err
	}

	postgresDB.Close()

	if err := mongoDB.Close(shutdownCtx); err != nil {
		log.Error("Error closing MongoDB connection", "error", err)
		shutdownErr = err
	}

	// Final status
	if serverErr != nil || shutdownErr != nil {
		log.Error("Server shutdown completed with errors")
		os.Exit(1)
	}
	log.Info("Server shutdown completed successfully")
}
