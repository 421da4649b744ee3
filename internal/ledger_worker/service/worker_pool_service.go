package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/panjf2000/ants/v2"
	"github.com/personal-ledger/internal/domain/shared"
)

// WorkerPoolConfig sizes the pool
type WorkerPoolConfig struct {
	Size int
}

// WorkerPoolCommandService bounds how many commands execute at once
type WorkerPoolCommandService struct {
	baseService CommandService
	pool        *ants.Pool
	logger      *slog.Logger
}

var _ CommandService = (*WorkerPoolCommandService)(nil)

func NewWorkerPoolCommandService(baseService CommandService, config WorkerPoolConfig, logger *slog.Logger) (*WorkerPoolCommandService, error) {
	pool, err := ants.NewPool(config.Size)
	if err != nil {
		return nil, fmt.Errorf("failed to create worker pool: %w", err)
	}

	return &WorkerPoolCommandService{
		baseService: baseService,
		pool:        pool,
		logger:      logger,
	}, nil
}

// Execute runs the command on a pooled worker and waits for its result
func (s *WorkerPoolCommandService) Execute(ctx context.Context, cmd *shared.LedgerCommand) error {
	resultChan := make(chan error, 1)
	cmdCopy := *cmd

	if err := s.pool.Submit(func() {
		resultChan <- s.baseService.Execute(ctx, &cmdCopy)
	}); err != nil {
		s.logger.Error("Failed to submit command to worker pool", "command_id", cmd.CommandID.String(), "error", err)
		return fmt.Errorf("failed to submit command to worker pool: %w", err)
	}

	select {
	case err := <-resultChan:
		return err
	case <-ctx.Done():
		// the worker still finishes; its store scope decides whether anything commits
		return shared.ErrStorageTimeout{Op: "await command " + cmd.CommandID.String(), Err: ctx.Err()}
	}
}

// Shutdown releases the pool
func (s *WorkerPoolCommandService) Shutdown() {
	s.logger.Info("Shutting down worker pool", "running_workers", s.pool.Running())
	s.pool.Release()
}

func (s *WorkerPoolCommandService) Running() int {
	return s.pool.Running()
}

func (s *WorkerPoolCommandService) Capacity() int {
	return s.pool.Cap()
}
