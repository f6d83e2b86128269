package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/helpdesk-kit/helpdesk-service/internal/service"
	apperrors "github.com/helpdesk-kit/helpdesk-service/pkg/util"
)

// ReportsHandler exposes read-only statistics endpoints.
type ReportsHandler struct {
	reports *service.ReportService
}

// NewReportsHandler constructs handler.
func NewReportsHandler(reports *service.ReportService) *ReportsHandler {
	return &ReportsHandler{reports: reports}
}

// Summary GET /reports/summary?from=...&to=...
func (h *ReportsHandler) Summary(c *fiber.Ctx) error {
	from, to, err := parseWindow(c)
	if err != nil {
		return err
	}
	report, err := h.reports.Summary(c.UserContext(), from, to)
	if err != nil {
		return err
	}
	return ok(c, report)
}

// Technicians GET /reports/technicians?from=...&to=...
func (h *ReportsHandler) Technicians(c *fiber.Ctx) error {
	from, to, err := parseWindow(c)
	if err != nil {
		return err
	}
	report, err := h.reports.TechnicianPerformance(c.UserContext(), from, to)
	if err != nil {
		return err
	}
	return ok(c, report)
}

// Trend GET /reports/trend?from=...&to=...
func (h *ReportsHandler) Trend(c *fiber.Ctx) error {
	from, to, err := parseWindow(c)
	if err != nil {
		return err
	}
	trend, err := h.reports.Trend(c.UserContext(), from, to)
	if err != nil {
		return err
	}
	return ok(c, trend)
}

// parseWindow reads the report window, defaulting to the last 30 days.
func parseWindow(c *fiber.Ctx) (time.Time, time.Time, error) {
	now := time.Now()
	from := now.AddDate(0, 0, -30)
	to := now

	if raw := c.Query("from"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return time.Time{}, time.Time{}, apperrors.NewValidationError("from must be RFC3339", nil)
		}
		from = parsed
	}
	if raw := c.Query("to"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return time.Time{}, time.Time{}, apperrors.NewValidationError("to must be RFC3339", nil)
		}
		to = parsed
	}
	return from, to, nil
}
