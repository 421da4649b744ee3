package account

import "time"

// EventType names an administrative change recorded without moving funds
type EventType string

const (
	EventFrozen              EventType = "FROZEN"
	EventUnfrozen            EventType = "UNFROZEN"
	EventDailyLimitChanged   EventType = "DAILY_LIMIT_CHANGED"
	EventInterestRateChanged EventType = "INTEREST_RATE_CHANGED"
	EventDeactivated         EventType = "DEACTIVATED"
)

// Event is transaction-free audit metadata attached to an account
type Event struct {
	ID        int64     `json:"id"`
	AccountID int64     `json:"account_id"`
	Type      EventType `json:"event_type"`
	Reason    string    `json:"reason,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
