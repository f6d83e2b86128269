package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/helpdesk-kit/helpdesk-service/internal/api/dto"
	"github.com/helpdesk-kit/helpdesk-service/internal/auth"
	"github.com/helpdesk-kit/helpdesk-service/internal/service"
	apperrors "github.com/helpdesk-kit/helpdesk-service/pkg/util"
)

// TicketsHandler manages submitter-facing ticket endpoints.
type TicketsHandler struct {
	lifecycle *service.LifecycleService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(lifecycle *service.LifecycleService) *TicketsHandler {
	return &TicketsHandler{lifecycle: lifecycle}
}

// CreateTicket POST /tickets.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	principal, okAuth := auth.PrincipalFromContext(c)
	if !okAuth {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticket, err := h.lifecycle.Create(c.UserContext(), principal.User.ID, service.TicketCreateInput{
		Kind:                   req.Kind,
		Equipment:              req.Equipment,
		MalfunctionDescription: req.MalfunctionDescription,
		PartsUsed:              req.PartsUsed,
		SoftwareName:           req.SoftwareName,
		NeedDescription:        req.NeedDescription,
	})
	if err != nil {
		return err
	}
	return created(c, dto.FromTicket(ticket))
}

// ListTickets GET /tickets.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	principal, okAuth := auth.PrincipalFromContext(c)
	if !okAuth {
		return apperrors.NewUnauthorized("authentication required")
	}
	limit, offset := pagination(c)
	tickets, err := h.lifecycle.ListBySubmitter(c.UserContext(), principal.User.ID, limit, offset)
	if err != nil {
		return err
	}
	return ok(c, dto.FromTickets(tickets))
}

// GetTicket GET /tickets/:id.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	principal, okAuth := auth.PrincipalFromContext(c)
	if !okAuth {
		return apperrors.NewUnauthorized("authentication required")
	}
	ticket, err := h.lifecycle.GetTicketFor(c.UserContext(), principal.User, c.Params("id"))
	if err != nil {
		return err
	}
	return ok(c, dto.FromTicket(ticket))
}

// GetTicketHistory GET /tickets/:id/history.
func (h *TicketsHandler) GetTicketHistory(c *fiber.Ctx) error {
	principal, okAuth := auth.PrincipalFromContext(c)
	if !okAuth {
		return apperrors.NewUnauthorized("authentication required")
	}
	limit, offset := pagination(c)
	entries, err := h.lifecycle.History(c.UserContext(), principal.User, c.Params("id"), limit, offset)
	if err != nil {
		return err
	}
	return ok(c, dto.FromHistory(entries))
}

func pagination(c *fiber.Ctx) (limit, offset int) {
	page := parsePositiveInt(c.Query("page"), 1)
	pageSize := parsePositiveInt(c.Query("page_size"), 20)
	return pageSize, (page - 1) * pageSize
}

func parsePositiveInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}
