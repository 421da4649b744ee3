package handler

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/personal-ledger/internal/api_gateway/service"
)

// ArchiveHandler serves the archived transaction read model
type ArchiveHandler struct {
	archive service.ArchiveService
	logger  *slog.Logger
}

// NewArchiveHandler creates a new archive handler
func NewArchiveHandler(logger *slog.Logger, archive service.ArchiveService) *ArchiveHandler {
	return &ArchiveHandler{
		archive: archive,
		logger:  logger,
	}
}

func (h *ArchiveHandler) GetTransaction(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	txn, err := h.archive.GetTransaction(c.Request.Context(), id)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, txn)
}

// ListAccountTransactions returns one page of archived transactions, newest first
func (h *ArchiveHandler) ListAccountTransactions(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var pagination PaginationParams
	if err := c.ShouldBindQuery(&pagination); err != nil {
		respondBindError(c, err)
		return
	}

	txns, total, err := h.archive.ListAccountTransactions(c.Request.Context(), id, pagination.Page, pagination.PerPage)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondWithPaginatedData(c, txns, pagination.Page, pagination.PerPage, total)
}
