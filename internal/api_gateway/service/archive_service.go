package service

import (
	"context"
	"log/slog"

	"github.com/personal-ledger/internal/domain/ledger"
	"github.com/personal-ledger/internal/domain/shared"
)

// ArchiveServiceImpl implements the ArchiveService interface
type ArchiveServiceImpl struct {
	archive ledger.ArchiveRepository
	logger  *slog.Logger
}

// NewArchiveService creates a new archive service
func NewArchiveService(logger *slog.Logger, archive ledger.ArchiveRepository) ArchiveService {
	return &ArchiveServiceImpl{
		archive: archive,
		logger:  logger,
	}
}

func (s *ArchiveServiceImpl) GetTransaction(ctx context.Context, transactionID int64) (*ledger.Transaction, error) {
	if transactionID <= 0 {
		return nil, shared.ErrInvalidInput{Field: "transaction_id", Reason: "must be a positive integer"}
	}
	return s.archive.GetByTransactionID(ctx, transactionID)
}

func (s *ArchiveServiceImpl) ListAccountTransactions(ctx context.Context, accountID int64, page, perPage int) ([]*ledger.Transaction, int64, error) {
	if accountID <= 0 {
		return nil, 0, shared.ErrInvalidInput{Field: "account_id", Reason: "must be a positive integer"}
	}
	offset := (page - 1) * perPage

	txns, err := s.archive.GetByAccountID(ctx, accountID, perPage, offset)
	if err != nil {
		s.logger.Error("Failed to list archived transactions", "account_id", accountID, "error", err)
		return nil, 0, err
	}

	total, err := s.archive.CountByAccountID(ctx, accountID)
	if err != nil {
		s.logger.Error("Failed to count archived transactions", "account_id", accountID, "error", err)
		return nil, 0, err
	}

	return txns, total, nil
}
