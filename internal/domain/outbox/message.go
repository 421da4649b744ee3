package outbox

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/personal-ledger/internal/domain/ledger"
	"github.com/personal-ledger/internal/domain/shared"
)

// Message carries one committed ledger transaction to the event stream.
// It is written in the same database transaction as the ledger row.
type Message struct {
	ID            int64                  `json:"id"`
	TransactionID int64                  `json:"transaction_id"`
	AccountID     int64                  `json:"account_id"`
	EventType     ledger.TransactionType `json:"event_type"`
	Payload       json.RawMessage        `json:"payload"`
	Status        shared.OutboxStatus    `json:"status"`
	Attempts      int                    `json:"attempts"`
	CreatedAt     time.Time              `json:"created_at"`
	LastAttemptAt *time.Time             `json:"last_attempt_at,omitempty"`
}

// NewMessage builds a pending message from a transaction that already has its ID
func NewMessage(txn *ledger.Transaction) (*Message, error) {
	payload, err := json.Marshal(txn)
	if err != nil {
		return nil, err
	}

	return &Message{
		TransactionID: txn.ID,
		AccountID:     txn.AccountID,
		EventType:     txn.Type,
		Payload:       payload,
		Status:        shared.OutboxStatusPending,
		CreatedAt:     txn.Timestamp,
	}, nil
}

// Key partitions the event stream by account so per-account order is kept
func (m *Message) Key() []byte {
	return []byte(strconv.FormatInt(m.AccountID, 10))
}

func (m *Message) IncrementAttempts(now time.Time) {
	m.Attempts++
	m.LastAttemptAt = &now
}

func (m *Message) MarkAsProcessed(now time.Time) {
	m.Status = shared.OutboxStatusProcessed
	m.LastAttemptAt = &now
}

func (m *Message) MarkAsFailed(now time.Time) {
	m.Status = shared.OutboxStatusFailedToPublish
	m.LastAttemptAt = &now
}

// Transaction decodes the payload
func (m *Message) Transaction() (*ledger.Transaction, error) {
	var txn ledger.Transaction
	if err := json.Unmarshal(m.Payload, &txn); err != nil {
		return nil, err
	}
	return &txn, nil
}
