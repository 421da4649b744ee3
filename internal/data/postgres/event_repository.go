package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/personal-ledger/internal/domain/account"
	"github.com/personal-ledger/internal/platform/persistence"
)

const (
	insertAccountEventQuery = `
		INSERT INTO account_events (account_id, event_type, reason, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id`

	listAccountEventsQuery = `
		SELECT id, account_id, event_type, reason, created_at
		FROM account_events
		WHERE account_id = $1
		ORDER BY created_at ASC, id ASC`
)

// EventRepository implements the account.EventRepository interface for PostgreSQL
type EventRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewEventRepository creates a new PostgreSQL account event repository
func NewEventRepository(logger *slog.Logger, db *persistence.PostgresDB) account.EventRepository {
	return &EventRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

func (r *EventRepository) WithTx(tx pgx.Tx) account.EventRepository {
	return &EventRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// Create records an administrative event
func (r *EventRepository) Create(ctx context.Context, event *account.Event) error {
	err := r.querier.QueryRow(ctx, insertAccountEventQuery,
		event.AccountID,
		string(event.Type),
		event.Reason,
		event.CreatedAt,
	).Scan(&event.ID)
	if err != nil {
		r.logger.Error("Failed to record account event",
			"account_id", event.AccountID,
			"event_type", string(event.Type),
			"error", err,
		)
		return fmt.Errorf("failed to record account event: %w", err)
	}

	return nil
}

// ListByAccount returns the audit trail of one account, oldest first
func (r *EventRepository) ListByAccount(ctx context.Context, accountID int64) ([]*account.Event, error) {
	rows, err := r.querier.Query(ctx, listAccountEventsQuery, accountID)
	if err != nil {
		r.logger.Error("Failed to list account events", "account_id", accountID, "error", err)
		return nil, fmt.Errorf("failed to list account events: %w", err)
	}
	defer rows.Close()

	events := []*account.Event{}
	for rows.Next() {
		var (
			event     account.Event
			eventType string
		)
		if err := rows.Scan(&event.ID, &event.AccountID, &eventType, &event.Reason, &event.CreatedAt); err != nil {
			r.logger.Error("Failed to scan account event", "error", err)
			return nil, fmt.Errorf("failed to scan account event: %w", err)
		}
		event.Type = account.EventType(eventType)
		events = append(events, &event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over account events: %w", err)
	}

	return events, nil
}
