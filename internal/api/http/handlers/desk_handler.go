package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/helpdesk-kit/helpdesk-service/internal/api/dto"
	"github.com/helpdesk-kit/helpdesk-service/internal/auth"
	"github.com/helpdesk-kit/helpdesk-service/internal/domain"
	"github.com/helpdesk-kit/helpdesk-service/internal/service"
	apperrors "github.com/helpdesk-kit/helpdesk-service/pkg/util"
)

// DeskHandler manages technician-facing attendance endpoints.
type DeskHandler struct {
	lifecycle *service.LifecycleService
}

// NewDeskHandler constructs handler.
func NewDeskHandler(lifecycle *service.LifecycleService) *DeskHandler {
	return &DeskHandler{lifecycle: lifecycle}
}

// NextTicket GET /desk/next?strategy=fifo.
func (h *DeskHandler) NextTicket(c *fiber.Ctx) error {
	ticket, err := h.lifecycle.NextTicket(c.UserContext(), c.Query("strategy"))
	if err != nil {
		return err
	}
	if ticket == nil {
		return ok(c, nil)
	}
	return ok(c, dto.FromTicket(ticket))
}

// ClaimTicket POST /desk/tickets/:id/claim.
func (h *DeskHandler) ClaimTicket(c *fiber.Ctx) error {
	principal, okAuth := auth.PrincipalFromContext(c)
	if !okAuth {
		return apperrors.NewUnauthorized("authentication required")
	}
	ticket, err := h.lifecycle.Claim(c.UserContext(), principal.User.ID, c.Params("id"))
	if err != nil {
		return err
	}
	return ok(c, dto.FromTicket(ticket))
}

// CompleteTicket POST /desk/tickets/:id/complete.
func (h *DeskHandler) CompleteTicket(c *fiber.Ctx) error {
	principal, okAuth := auth.PrincipalFromContext(c)
	if !okAuth {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.CompleteTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticket, err := h.lifecycle.Complete(c.UserContext(), principal.User.ID, c.Params("id"), service.CompletionInput{
		Outcome:                 req.Outcome,
		RepairDescription:       req.RepairDescription,
		PartsUsed:               req.PartsUsed,
		InterventionDescription: req.InterventionDescription,
	})
	if err != nil {
		return err
	}
	return ok(c, dto.FromTicket(ticket))
}

// MyTickets GET /desk/mine. Tickets the caller has claimed.
func (h *DeskHandler) MyTickets(c *fiber.Ctx) error {
	principal, okAuth := auth.PrincipalFromContext(c)
	if !okAuth {
		return apperrors.NewUnauthorized("authentication required")
	}
	limit, offset := pagination(c)
	tickets, err := h.lifecycle.ListByTechnician(c.UserContext(), principal.User.ID, limit, offset)
	if err != nil {
		return err
	}
	return ok(c, dto.FromTickets(tickets))
}

// ListTickets GET /desk/tickets?state=PENDING.
func (h *DeskHandler) ListTickets(c *fiber.Ctx) error {
	state := domain.TicketState(c.Query("state", string(domain.TicketStatePending)))
	tickets, err := h.lifecycle.ListByState(c.UserContext(), state)
	if err != nil {
		return err
	}
	return ok(c, dto.FromTickets(tickets))
}
