package dto

import (
	"time"

	"github.com/helpdesk-kit/helpdesk-service/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	Kind                   domain.TicketKind `json:"kind"`
	Equipment              string            `json:"equipment"`
	MalfunctionDescription string            `json:"malfunction_description"`
	PartsUsed              string            `json:"parts_used"`
	SoftwareName           string            `json:"software_name"`
	NeedDescription        string            `json:"need_description"`
}

// CompleteTicketRequest payload.
type CompleteTicketRequest struct {
	Outcome                 domain.ResolutionOutcome `json:"outcome"`
	RepairDescription       string                   `json:"repair_description"`
	PartsUsed               string                   `json:"parts_used"`
	InterventionDescription string                   `json:"intervention_description"`
}

// TicketResponse is the full ticket representation.
type TicketResponse struct {
	ID                      string                   `json:"id"`
	ExternalKey             string                   `json:"external_key"`
	SubmitterID             string                   `json:"submitter_id"`
	Kind                    domain.TicketKind        `json:"kind"`
	State                   domain.TicketState       `json:"state"`
	Outcome                 domain.ResolutionOutcome `json:"outcome"`
	TechnicianID            *string                  `json:"technician_id,omitempty"`
	Equipment               string                   `json:"equipment,omitempty"`
	MalfunctionDescription  string                   `json:"malfunction_description,omitempty"`
	RepairDescription       string                   `json:"repair_description,omitempty"`
	PartsUsed               string                   `json:"parts_used,omitempty"`
	SoftwareName            string                   `json:"software_name,omitempty"`
	NeedDescription         string                   `json:"need_description,omitempty"`
	InterventionDescription string                   `json:"intervention_description,omitempty"`
	CreatedAt               time.Time                `json:"created_at"`
	AttendedAt              *time.Time               `json:"attended_at,omitempty"`
	CompletedAt             *time.Time               `json:"completed_at,omitempty"`
	UpdatedAt               time.Time                `json:"updated_at"`
}

// TicketHistoryResponse is one audit entry.
type TicketHistoryResponse struct {
	ID         string                   `json:"id"`
	ChangeType domain.HistoryChangeType `json:"change_type"`
	ActorID    *string                  `json:"actor_id,omitempty"`
	OldValue   map[string]any           `json:"old_value,omitempty"`
	NewValue   map[string]any           `json:"new_value,omitempty"`
	CreatedAt  time.Time                `json:"created_at"`
}

// FromTicket maps the domain ticket to its response shape.
func FromTicket(ticket *domain.Ticket) TicketResponse {
	return TicketResponse{
		ID:                      ticket.ID,
		ExternalKey:             ticket.ExternalKey,
		SubmitterID:             ticket.SubmitterID,
		Kind:                    ticket.Kind,
		State:                   ticket.State,
		Outcome:                 ticket.Outcome,
		TechnicianID:            ticket.TechnicianID,
		Equipment:               ticket.Equipment,
		MalfunctionDescription:  ticket.MalfunctionDescription,
		RepairDescription:       ticket.RepairDescription,
		PartsUsed:               ticket.PartsUsed,
		SoftwareName:            ticket.SoftwareName,
		NeedDescription:         ticket.NeedDescription,
		InterventionDescription: ticket.InterventionDescription,
		CreatedAt:               ticket.CreatedAt,
		AttendedAt:              ticket.AttendedAt,
		CompletedAt:             ticket.CompletedAt,
		UpdatedAt:               ticket.UpdatedAt,
	}
}

// FromTickets maps a ticket slice.
func FromTickets(tickets []domain.Ticket) []TicketResponse {
	items := make([]TicketResponse, 0, len(tickets))
	for i := range tickets {
		items = append(items, FromTicket(&tickets[i]))
	}
	return items
}

// FromHistory maps audit entries.
func FromHistory(entries []domain.TicketHistory) []TicketHistoryResponse {
	items := make([]TicketHistoryResponse, 0, len(entries))
	for _, entry := range entries {
		items = append(items, TicketHistoryResponse{
			ID:         entry.ID,
			ChangeType: entry.ChangeType,
			ActorID:    entry.ActorID,
			OldValue:   entry.OldValue,
			NewValue:   entry.NewValue,
			CreatedAt:  entry.CreatedAt,
		})
	}
	return items
}
