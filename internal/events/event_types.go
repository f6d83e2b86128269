package events

import (
	"time"

	"github.com/helpdesk-kit/helpdesk-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated   EventType = "ticket_created"
	EventTicketClaimed   EventType = "ticket_claimed"
	EventTicketCompleted EventType = "ticket_completed"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  string      `json:"ticket_id"`
	ActorID   string      `json:"actor_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	Kind        domain.TicketKind `json:"kind"`
	SubmitterID string            `json:"submitter_id"`
	ExternalKey string            `json:"external_key"`
}

// TicketClaimedPayload payload.
type TicketClaimedPayload struct {
	TechnicianID string            `json:"technician_id"`
	Kind         domain.TicketKind `json:"kind"`
}

// TicketCompletedPayload payload.
type TicketCompletedPayload struct {
	TechnicianID string                   `json:"technician_id"`
	Outcome      domain.ResolutionOutcome `json:"outcome"`
}
