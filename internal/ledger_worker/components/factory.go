package components

import (
	"log/slog"

	"github.com/personal-ledger/internal/config"
	"github.com/personal-ledger/internal/ledger_worker/service"
)

// CreateCommandService builds the command service over engine, bounded by the
// configured worker pool when one can be created
func CreateCommandService(engine service.LedgerEngine, logger *slog.Logger, cfg *config.Config) service.CommandService {
	baseService := service.NewCommandService(engine, logger)
	if cfg.WorkerPool.Size <= 0 {
		logger.Warn("Worker pool disabled, commands run on the consumer goroutine", "pool_size", cfg.WorkerPool.Size)
		return baseService
	}

	workerPoolService, err := service.NewWorkerPoolCommandService(
		baseService,
		service.WorkerPoolConfig{Size: cfg.WorkerPool.Size},
		logger.With("component", "worker_pool"),
	)
	if err != nil {
		logger.Error("Failed to create worker pool service, falling back to base service", "error", err)
		return baseService
	}

	logger.Info("Created worker pool command service", "pool_size", cfg.WorkerPool.Size)
	return workerPoolService
}
