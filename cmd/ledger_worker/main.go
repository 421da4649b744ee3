package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/personal-ledger/internal/account_manager"
	"github.com/personal-ledger/internal/config"
	"github.com/personal-ledger/internal/data/mongo"
	"github.com/personal-ledger/internal/data/postgres"
	"github.com/personal-ledger/internal/domain/account"
	"github.com/personal-ledger/internal/ledger_worker/components"
	"github.com/personal-ledger/internal/ledger_worker/consumer"
	"github.com/personal-ledger/internal/ledger_worker/outbox_poller"
	"github.com/personal-ledger/internal/ledger_worker/service"
	"github.com/personal-ledger/internal/logger"
	"github.com/personal-ledger/internal/platform/messaging/consumers"
	"github.com/personal-ledger/internal/platform/messaging/producers"
	"github.com/personal-ledger/internal/platform/persistence"
)

func main() {
	// Create base context with cancellation
	appCtx, cancelAppCtx := context.WithCancel(context.Background())
	defer cancelAppCtx()

	// Initialize configuration
	cfg, err := config.LoadConfig("ledger_worker")
	if err != nil {
		// logger is not initialized yet, so we use fmt
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.NewLogger(cfg)

	log.Info("Starting Ledger Worker",
		"app_name", cfg.Application.Name,
		"env", cfg.Application.Env,
	)

	location, err := cfg.Ledger.Location()
	if err != nil {
		log.Error("Invalid ledger timezone", "error", err)
		os.Exit(1)
	}

	// Initialize databases with app context
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

	// Initialize repositories
	outboxRepo := postgres.NewOutboxRepository(log, postgresDB)
	archiveRepo := mongo.NewArchiveRepository(log, mongoDB.Database())
	if err := archiveRepo.EnsureIndexes(appCtx); err != nil {
		log.Error("Failed to create archive indexes", "error", err)
		os.Exit(1)
	}

	// Initialize Kafka producers
	dlqProducer, err := producers.NewDLQProducer(log, &cfg.Kafka)
	if err != nil {
		log.Error("Failed to initialize DLQ Kafka producer", "error", err)
		os.Exit(1)
	}
	eventProducer, err := producers.NewEventProducer(log, &cfg.Kafka)
	if err != nil {
		log.Error("Failed to initialize event Kafka producer", "error", err)
		os.Exit(1)
	}

	// Initialize the ledger engine and the command pipeline
	store := postgres.NewStore(log, postgresDB, cfg.Ledger)
	manager := account_manager.NewManager(store, log,
		account_manager.WithLocation(location),
		account_manager.WithNumberGenerator(account.NewNumberGenerator(cfg.Ledger.AccountNumberPrefix)),
	)
	commandService := components.CreateCommandService(manager, log, cfg)
	var deadLetters producers.DeadLetterPublisher
	if dlqProducer != nil {
		deadLetters = dlqProducer
	}
	commandHandler := consumer.NewCommandHandler(log, commandService, deadLetters)
	kafkaConsumer := consumers.NewKafkaConsumer(log, &cfg.Kafka)

	// Initialize outbox poller
	eventPublisher := outbox_poller.NewEventPublisher(outboxRepo, eventProducer, archiveRepo, log)
	poller := outbox_poller.NewPoller(&cfg.Outbox, outboxRepo, eventPublisher, log)

	// Create error channel for service errors
	errChan := make(chan error, 1)

	// Create wait group for graceful shutdown
	var wg sync.WaitGroup

	if err := kafkaConsumer.Subscribe(appCtx, commandHandler.HandleMessage); err != nil {
		errChan <- fmt.Errorf("kafka consumer error: %w", err)
	}

	// Start outbox poller in a goroutine
	wg.Add(1)
	go func() {
		defer wg.Done()
		poller.Start(appCtx)
	}()

	// Set up signal handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	// Wait for a shutdown signal or error
	var serviceErr error
	select {
	case <-quit:
		log.Info("Shutdown signal received")
	case err := <-errChan:
		log.Error("Service error occurred", "error", err)
		serviceErr = err
	}

	// Cancel the application context
	cancelAppCtx()

	log.Info("Starting graceful shutdown...")

	// Stop reading before the pool and the store go away
	if err := kafkaConsumer.Close(); err != nil {
		log.Error("Error closing Kafka consumer", "error", err)
	}

	if pooled, ok := commandService.(*service.WorkerPoolCommandService); ok {
		pooled.Shutdown()
	}

	// Wait for the poller to finish its current batch
	wg.Wait()
	log.Info("All services stopped")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelShutdown()

	if err := dlqProducer.Close(); err != nil {
		log.Error("Error closing DLQ Kafka producer", "error", err)
	}
	if err := eventProducer.Close(); err != nil {
		log.Error("Error closing event Kafka producer", "error", err)
	}

	postgresDB.Close()

	if err := mongoDB.Close(shutdownCtx); err != nil {
		log.Error("Error closing MongoDB connection", "error", err)
	}

	if serviceErr != nil {
		log.Error("Ledger Worker shutdown with errors", "error", serviceErr)
		os.Exit(1)
	}
	log.Info("Ledger Worker shutdown completed successfully")
}
