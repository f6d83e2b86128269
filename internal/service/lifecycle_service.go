package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/helpdesk-kit/helpdesk-service/internal/dispatch"
	"github.com/helpdesk-kit/helpdesk-service/internal/domain"
	"github.com/helpdesk-kit/helpdesk-service/internal/events"
	"github.com/helpdesk-kit/helpdesk-service/internal/repository"
	apperrors "github.com/helpdesk-kit/helpdesk-service/pkg/util"
)

// LifecycleService enforces the ticket state machine: tickets are created
// PENDING, claimed into IN_PROGRESS by a technician, and completed with a
// resolution outcome. Every transition is persisted through a guarded
// write so a race-lost transition surfaces as an invalid-state failure.
type LifecycleService struct {
	tickets    repository.TicketRepository
	users      repository.UserRepository
	history    repository.TicketHistoryRepository
	dispatcher events.Dispatcher
	strategies *dispatch.Registry
	defaultStr string
}

// LifecycleDependencies bundles collaborators for the lifecycle service.
type LifecycleDependencies struct {
	TicketRepo      repository.TicketRepository
	UserRepo        repository.UserRepository
	HistoryRepo     repository.TicketHistoryRepository
	Dispatcher      events.Dispatcher
	Strategies      *dispatch.Registry
	DefaultStrategy string
}

// TicketCreateInput describes ticket creation payload. Kind selects which
// variant fields are required.
type TicketCreateInput struct {
	Kind                   domain.TicketKind
	Equipment              string
	MalfunctionDescription string
	PartsUsed              string
	SoftwareName           string
	NeedDescription        string
}

// CompletionInput carries the resolution recorded when completing a ticket.
type CompletionInput struct {
	Outcome                 domain.ResolutionOutcome
	RepairDescription       string
	PartsUsed               string
	InterventionDescription string
}

// NewLifecycleService constructs the service.
func NewLifecycleService(deps LifecycleDependencies) *LifecycleService {
	defaultStr := deps.DefaultStrategy
	if defaultStr == "" {
		defaultStr = dispatch.StrategyFIFO
	}
	return &LifecycleService{
		tickets:    deps.TicketRepo,
		users:      deps.UserRepo,
		history:    deps.HistoryRepo,
		dispatcher: deps.Dispatcher,
		strategies: deps.Strategies,
		defaultStr: defaultStr,
	}
}

// Create validates and files a new ticket for a submitter.
func (s *LifecycleService) Create(ctx context.Context, submitterID string, input TicketCreateInput) (*domain.Ticket, error) {
	submitter, err := s.users.GetByID(ctx, submitterID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("submitter", map[string]any{"user_id": submitterID})
		}
		return nil, apperrors.NewStorageError(err)
	}
	if !submitter.CanSubmit() {
		return nil, apperrors.NewValidationError("submitter account is inactive", nil)
	}

	ticket := &domain.Ticket{
		ExternalKey: generateTicketKey(),
		SubmitterID: submitter.ID,
		Kind:        input.Kind,
		State:       domain.TicketStatePending,
		Outcome:     domain.ResolutionOpen,
	}
	switch input.Kind {
	case domain.TicketKindHardware:
		ticket.Equipment = strings.TrimSpace(input.Equipment)
		ticket.MalfunctionDescription = strings.TrimSpace(input.MalfunctionDescription)
		ticket.PartsUsed = strings.TrimSpace(input.PartsUsed)
		if ticket.Equipment == "" || ticket.MalfunctionDescription == "" {
			return nil, apperrors.NewValidationError("equipment and malfunction_description required", nil)
		}
	case domain.TicketKindSoftware:
		ticket.SoftwareName = strings.TrimSpace(input.SoftwareName)
		ticket.NeedDescription = strings.TrimSpace(input.NeedDescription)
		if ticket.SoftwareName == "" || ticket.NeedDescription == "" {
			return nil, apperrors.NewValidationError("software_name and need_description required", nil)
		}
	default:
		return nil, apperrors.NewValidationError("kind must be HARDWARE or SOFTWARE", nil)
	}

	if err := s.tickets.Insert(ctx, ticket); err != nil {
		return nil, apperrors.NewStorageError(err)
	}
	if err := s.recordCreation(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		ActorID:  submitter.ID,
		Payload: events.TicketCreatedPayload{
			Kind:        ticket.Kind,
			SubmitterID: ticket.SubmitterID,
			ExternalKey: ticket.ExternalKey,
		},
	})
	return ticket, nil
}

// Claim transitions a PENDING ticket to IN_PROGRESS for a technician.
// Claiming an already-claimed ticket fails; it never silently succeeds.
func (s *LifecycleService) Claim(ctx context.Context, technicianID, ticketID string) (*domain.Ticket, error) {
	technician, err := s.requireAttendant(ctx, technicianID)
	if err != nil {
		return nil, err
	}

	ticket, err := s.getTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if ticket.State != domain.TicketStatePending {
		return nil, apperrors.NewInvalidStateError("ticket is not pending", map[string]any{
			"ticket_id": ticket.ID,
			"state":     ticket.State,
		})
	}

	now := time.Now()
	oldState := ticket.State
	ticket.State = domain.TicketStateInProgress
	ticket.TechnicianID = &technician.ID
	ticket.AttendedAt = &now

	if err := s.tickets.UpdateStateGuarded(ctx, ticket, domain.TicketStatePending); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewInvalidStateError("ticket was claimed by someone else, refresh and retry", map[string]any{
				"ticket_id": ticket.ID,
			})
		}
		return nil, apperrors.NewStorageError(err)
	}
	if err := s.recordStateChange(ctx, technician.ID, ticket.ID, oldState, ticket.State); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketClaimed,
		TicketID: ticket.ID,
		ActorID:  technician.ID,
		Payload: events.TicketClaimedPayload{
			TechnicianID: technician.ID,
			Kind:         ticket.Kind,
		},
	})
	return ticket, nil
}

// Complete transitions an IN_PROGRESS ticket to COMPLETED, recording the
// outcome and the kind's resolution details.
func (s *LifecycleService) Complete(ctx context.Context, technicianID, ticketID string, input CompletionInput) (*domain.Ticket, error) {
	technician, err := s.requireAttendant(ctx, technicianID)
	if err != nil {
		return nil, err
	}
	if input.Outcome != domain.ResolutionResolved && input.Outcome != domain.ResolutionUnresolved {
		return nil, apperrors.NewValidationError("outcome must be RESOLVED or UNRESOLVED", nil)
	}

	ticket, err := s.getTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if ticket.State != domain.TicketStateInProgress {
		return nil, apperrors.NewInvalidStateError("ticket is not in progress", map[string]any{
			"ticket_id": ticket.ID,
			"state":     ticket.State,
		})
	}

	switch ticket.Kind {
	case domain.TicketKindHardware:
		repair := strings.TrimSpace(input.RepairDescription)
		if repair == "" {
			return nil, apperrors.NewValidationError("repair_description required", nil)
		}
		ticket.RepairDescription = repair
		if parts := strings.TrimSpace(input.PartsUsed); parts != "" {
			ticket.PartsUsed = parts
		}
	case domain.TicketKindSoftware:
		intervention := strings.TrimSpace(input.InterventionDescription)
		if intervention == "" {
			return nil, apperrors.NewValidationError("intervention_description required", nil)
		}
		ticket.InterventionDescription = intervention
	}

	now := time.Now()
	oldState := ticket.State
	ticket.State = domain.TicketStateCompleted
	ticket.Outcome = input.Outcome
	ticket.CompletedAt = &now

	if err := s.tickets.UpdateStateGuarded(ctx, ticket, domain.TicketStateInProgress); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewInvalidStateError("ticket state changed, refresh and retry", map[string]any{
				"ticket_id": ticket.ID,
			})
		}
		return nil, apperrors.NewStorageError(err)
	}
	if err := s.recordStateChange(ctx, technician.ID, ticket.ID, oldState, ticket.State); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketCompleted,
		TicketID: ticket.ID,
		ActorID:  technician.ID,
		Payload: events.TicketCompletedPayload{
			TechnicianID: technician.ID,
			Outcome:      ticket.Outcome,
		},
	})
	return ticket, nil
}

// NextTicket applies a dispatch strategy over the pending pool and returns
// the selected ticket, or nil when nothing is pending. Selection is
// read-only; the caller claims the ticket separately.
func (s *LifecycleService) NextTicket(ctx context.Context, strategyName string) (*domain.Ticket, error) {
	if strategyName == "" {
		strategyName = s.defaultStr
	}
	strategy, err := s.strategies.Get(strategyName)
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error(), nil)
	}
	pool, err := s.tickets.ListByState(ctx, domain.TicketStatePending)
	if err != nil {
		return nil, apperrors.NewStorageError(err)
	}
	return strategy.SelectNext(pool), nil
}

// GetTicketFor fetches a ticket enforcing visibility: employees only see
// their own submissions.
func (s *LifecycleService) GetTicketFor(ctx context.Context, caller *domain.User, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.getTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if caller.Role == domain.RoleEmployee && ticket.SubmitterID != caller.ID {
		return nil, apperrors.NewPermissionError("access denied")
	}
	return ticket, nil
}

// ListBySubmitter returns the caller's own tickets, newest first.
func (s *LifecycleService) ListBySubmitter(ctx context.Context, submitterID string, limit, offset int) ([]domain.Ticket, error) {
	tickets, err := s.tickets.ListBySubmitter(ctx, submitterID, limit, offset)
	if err != nil {
		return nil, apperrors.NewStorageError(err)
	}
	return tickets, nil
}

// ListByTechnician returns tickets claimed by a technician, newest first.
func (s *LifecycleService) ListByTechnician(ctx context.Context, technicianID string, limit, offset int) ([]domain.Ticket, error) {
	tickets, err := s.tickets.ListByTechnician(ctx, technicianID, limit, offset)
	if err != nil {
		return nil, apperrors.NewStorageError(err)
	}
	return tickets, nil
}

// ListByState returns tickets in a lifecycle state, oldest first.
func (s *LifecycleService) ListByState(ctx context.Context, state domain.TicketState) ([]domain.Ticket, error) {
	switch state {
	case domain.TicketStatePending, domain.TicketStateInProgress, domain.TicketStateCompleted:
	default:
		return nil, apperrors.NewValidationError("unknown lifecycle state", map[string]any{"state": state})
	}
	tickets, err := s.tickets.ListByState(ctx, state)
	if err != nil {
		return nil, apperrors.NewStorageError(err)
	}
	return tickets, nil
}

// History returns the audit trail for a ticket.
func (s *LifecycleService) History(ctx context.Context, caller *domain.User, ticketID string, limit, offset int) ([]domain.TicketHistory, error) {
	if _, err := s.GetTicketFor(ctx, caller, ticketID); err != nil {
		return nil, err
	}
	entries, err := s.history.ListByTicket(ctx, ticketID, limit, offset)
	if err != nil {
		return nil, apperrors.NewStorageError(err)
	}
	return entries, nil
}

func (s *LifecycleService) requireAttendant(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("technician", map[string]any{"user_id": userID})
		}
		return nil, apperrors.NewStorageError(err)
	}
	if !user.CanAttend() {
		return nil, apperrors.NewPermissionError("technician role and active status required")
	}
	return user, nil
}

// getTicket resolves either an internal id or an HD-prefixed external key.
func (s *LifecycleService) getTicket(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	var ticket *domain.Ticket
	var err error
	if strings.HasPrefix(ticketID, "HD-") {
		ticket, err = s.tickets.GetByExternalKey(ctx, ticketID)
	} else {
		ticket, err = s.tickets.GetByID(ctx, ticketID)
	}
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, apperrors.NewStorageError(err)
	}
	return ticket, nil
}

func (s *LifecycleService) recordCreation(ctx context.Context, ticket *domain.Ticket) error {
	if s.history == nil {
		return nil
	}
	submitterID := ticket.SubmitterID
	return s.history.Create(ctx, &domain.TicketHistory{
		TicketID:   ticket.ID,
		ActorID:    &submitterID,
		ChangeType: domain.ChangeTypeCreated,
		NewValue: map[string]any{
			"state": ticket.State,
			"kind":  ticket.Kind,
		},
	})
}

func (s *LifecycleService) recordStateChange(ctx context.Context, actorID, ticketID string, oldState, newState domain.TicketState) error {
	if s.history == nil {
		return nil
	}
	return s.history.Create(ctx, &domain.TicketHistory{
		TicketID:   ticketID,
		ActorID:    &actorID,
		ChangeType: domain.ChangeTypeState,
		OldValue: map[string]any{
			"state": oldState,
		},
		NewValue: map[string]any{
			"state": newState,
		},
	})
}

func (s *LifecycleService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func generateTicketKey() string {
	return "HD-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}
