package domain

import "time"

// TicketState enumerates lifecycle states for tickets.
type TicketState string

const (
	TicketStatePending    TicketState = "PENDING"
	TicketStateInProgress TicketState = "IN_PROGRESS"
	TicketStateCompleted  TicketState = "COMPLETED"
)

// TicketKind discriminates the two ticket variants.
type TicketKind string

const (
	TicketKindHardware TicketKind = "HARDWARE"
	TicketKindSoftware TicketKind = "SOFTWARE"
)

// ResolutionOutcome records how an attended ticket ended. It stays OPEN
// until the ticket reaches COMPLETED.
type ResolutionOutcome string

const (
	ResolutionOpen       ResolutionOutcome = "OPEN"
	ResolutionResolved   ResolutionOutcome = "RESOLVED"
	ResolutionUnresolved ResolutionOutcome = "UNRESOLVED"
)

// Ticket is the aggregate for support requests. Kind selects which of the
// variant field groups applies; the unused group stays empty.
type Ticket struct {
	ID           string
	ExternalKey  string
	SubmitterID  string
	Kind         TicketKind
	State        TicketState
	Outcome      ResolutionOutcome
	TechnicianID *string

	// Hardware variant fields.
	Equipment              string
	MalfunctionDescription string
	RepairDescription      string
	PartsUsed              string

	// Software variant fields.
	SoftwareName            string
	NeedDescription         string
	InterventionDescription string

	CreatedAt   time.Time
	AttendedAt  *time.Time
	CompletedAt *time.Time
	UpdatedAt   time.Time
}

// ProblemText returns the free-text request description for the ticket's
// kind. Dispatch strategies match urgency keywords against it.
func (t *Ticket) ProblemText() string {
	if t.Kind == TicketKindHardware {
		return t.MalfunctionDescription
	}
	return t.NeedDescription
}

// Attended reports whether the ticket has been picked up by a technician.
func (t *Ticket) Attended() bool {
	return t.State == TicketStateInProgress || t.State == TicketStateCompleted
}

// AttendanceHours returns the hours between creation and attendance, or 0
// when the ticket has not been attended yet.
func (t *Ticket) AttendanceHours() float64 {
	if t.AttendedAt == nil {
		return 0
	}
	return t.AttendedAt.Sub(t.CreatedAt).Hours()
}
