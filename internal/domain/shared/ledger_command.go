package shared

import (
	"time"

	"github.com/google/uuid"
	"github.com/personal-ledger/internal/domain/money"
)

// CommandType names an asynchronous ledger operation
type CommandType string

const (
	CommandTypeDeposit      CommandType = "DEPOSIT"
	CommandTypeWithdraw     CommandType = "WITHDRAW"
	CommandTypeTransfer     CommandType = "TRANSFER"
	CommandTypeBulkTransfer CommandType = "BULK_TRANSFER"
	CommandTypeFee          CommandType = "FEE"
)

// CommandLeg is one destination of a bulk transfer command
type CommandLeg struct {
	ToAccountID int64       `json:"to_account_id"`
	Amount      money.Money `json:"amount"`
}

// LedgerCommand defines a Kafka message requesting a ledger mutation.
// CommandID doubles as the idempotency reference of the resulting records.
type LedgerCommand struct {
	CommandID     uuid.UUID    `json:"command_id"`
	Type          CommandType  `json:"type"`
	AccountID     int64        `json:"account_id"`
	ToAccountID   int64        `json:"to_account_id,omitempty"`
	Amount        money.Money  `json:"amount"`
	Legs          []CommandLeg `json:"legs,omitempty"`
	Description   string       `json:"description,omitempty"`
	CorrelationID string       `json:"correlation_id,omitempty"`
	Timestamp     time.Time    `json:"timestamp"`
}

// Validate checks the command shape; amounts are validated by the ledger itself
func (c *LedgerCommand) Validate() error {
	if c.CommandID == uuid.Nil {
		return ErrInvalidInput{Field: "command_id", Reason: "is required"}
	}
	if c.AccountID <= 0 {
		return ErrInvalidInput{Field: "account_id", Reason: "must be a positive integer"}
	}

	switch c.Type {
	case CommandTypeDeposit, CommandTypeWithdraw, CommandTypeFee:
	case CommandTypeTransfer:
		if c.ToAccountID <= 0 {
			return ErrInvalidInput{Field: "to_account_id", Reason: "must be a positive integer"}
		}
	case CommandTypeBulkTransfer:
		if len(c.Legs) == 0 {
			return ErrInvalidInput{Field: "legs", Reason: "at least one leg is required"}
		}
	default:
		return ErrInvalidInput{Field: "type", Reason: "unsupported command type " + string(c.Type)}
	}

	return nil
}

// Reference returns the idempotency reference derived from the command id
func (c *LedgerCommand) Reference() string {
	return "cmd-" + c.CommandID.String()
}
