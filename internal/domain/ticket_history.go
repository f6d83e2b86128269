package domain

import "time"

// HistoryChangeType tags what a history entry records.
type HistoryChangeType string

const (
	ChangeTypeCreated HistoryChangeType = "CREATED"
	ChangeTypeState   HistoryChangeType = "STATE"
)

// TicketHistory is an audit entry for a ticket transition.
type TicketHistory struct {
	ID         string
	TicketID   string
	ActorID    *string
	ChangeType HistoryChangeType
	OldValue   map[string]any
	NewValue   map[string]any
	CreatedAt  time.Time
}
