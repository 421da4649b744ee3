package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/personal-ledger/internal/api_gateway/middleware"
	"github.com/personal-ledger/internal/api_gateway/service"
	"github.com/personal-ledger/internal/domain/shared"
)

// CommandHandler accepts ledger commands for asynchronous processing
type CommandHandler struct {
	commands service.CommandService
	logger   *slog.Logger
}

// NewCommandHandler creates a new command handler
func NewCommandHandler(logger *slog.Logger, commands service.CommandService) *CommandHandler {
	return &CommandHandler{
		commands: commands,
		logger:   logger,
	}
}

// Submit publishes the command and answers 202; the outcome arrives on the event stream
func (h *CommandHandler) Submit(c *gin.Context) {
	var req CommandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	cmd := &shared.LedgerCommand{
		Type:          shared.CommandType(strings.ToUpper(req.Type)),
		AccountID:     req.AccountID,
		ToAccountID:   req.ToAccountID,
		Amount:        req.Amount,
		Legs:          req.Legs,
		Description:   req.Description,
		CorrelationID: middleware.GetCorrelationID(c),
	}
	if req.CommandID != "" {
		cmd.CommandID = uuid.MustParse(req.CommandID)
	}

	published, err := h.commands.Submit(c.Request.Context(), cmd)
	if err != nil {
		if shared.IsClientError(err) {
			RespondError(c, err)
			return
		}
		_ = c.Error(err)
		middleware.RequestLogger(c, h.logger).Error("Failed to submit ledger command", "error", err)
		RespondWithError(c, http.StatusServiceUnavailable, shared.FailureReasonStorageTimeout, "Ledger command could not be queued, retry later")
		return
	}

	RespondAccepted(c, CommandResponse{
		CommandID: published.CommandID.String(),
		Type:      string(published.Type),
		Status:    "ACCEPTED",
		Timestamp: published.Timestamp,
	})
}
