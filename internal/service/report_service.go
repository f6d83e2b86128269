package service

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/helpdesk-kit/helpdesk-service/internal/repository"
	"github.com/helpdesk-kit/helpdesk-service/internal/stats"
	apperrors "github.com/helpdesk-kit/helpdesk-service/pkg/util"
)

// ReportService reads ticket windows from storage and projects them through
// the stats aggregator. It never mutates ticket state.
type ReportService struct {
	tickets repository.TicketRepository
	users   repository.UserRepository
}

// NewReportService constructs the service.
func NewReportService(tickets repository.TicketRepository, users repository.UserRepository) *ReportService {
	return &ReportService{tickets: tickets, users: users}
}

// SummaryReport bundles the window figures with attendance times.
type SummaryReport struct {
	From    time.Time             `json:"from"`
	To      time.Time             `json:"to"`
	Summary stats.Summary         `json:"summary"`
	Times   stats.AttendanceTimes `json:"attendance_times"`
}

// TechnicianReport is a scored technician entry with a display name.
type TechnicianReport struct {
	stats.TechnicianStats
	TechnicianName string `json:"technician_name"`
}

// Summary computes volume and rate figures for a date window.
func (s *ReportService) Summary(ctx context.Context, from, to time.Time) (*SummaryReport, error) {
	if err := validateWindow(from, to); err != nil {
		return nil, err
	}
	tickets, err := s.tickets.ListByDateRange(ctx, from, to)
	if err != nil {
		return nil, apperrors.NewStorageError(err)
	}
	return &SummaryReport{
		From:    from,
		To:      to,
		Summary: stats.Summarize(tickets),
		Times:   stats.AverageAttendanceTimes(tickets),
	}, nil
}

// TechnicianPerformance scores each technician over a date window and
// resolves display names through the user directory.
func (s *ReportService) TechnicianPerformance(ctx context.Context, from, to time.Time) ([]TechnicianReport, error) {
	if err := validateWindow(from, to); err != nil {
		return nil, err
	}
	tickets, err := s.tickets.ListByDateRange(ctx, from, to)
	if err != nil {
		return nil, apperrors.NewStorageError(err)
	}
	entries := stats.TechnicianPerformance(tickets)
	reports := make([]TechnicianReport, 0, len(entries))
	for _, entry := range entries {
		report := TechnicianReport{TechnicianStats: entry}
		user, err := s.users.GetByID(ctx, entry.TechnicianID)
		switch {
		case err == nil:
			report.TechnicianName = user.FullName
		case errors.Is(err, pgx.ErrNoRows):
			// keep the raw id when the account is gone
		default:
			return nil, apperrors.NewStorageError(err)
		}
		reports = append(reports, report)
	}
	return reports, nil
}

// Trend compares the requested window against the immediately preceding
// window of equal length.
func (s *ReportService) Trend(ctx context.Context, from, to time.Time) (*stats.Trend, error) {
	if err := validateWindow(from, to); err != nil {
		return nil, err
	}
	current, err := s.tickets.ListByDateRange(ctx, from, to)
	if err != nil {
		return nil, apperrors.NewStorageError(err)
	}
	length := to.Sub(from)
	previous, err := s.tickets.ListByDateRange(ctx, from.Add(-length), from)
	if err != nil {
		return nil, apperrors.NewStorageError(err)
	}
	trend := stats.CompareWindows(current, previous)
	return &trend, nil
}

func validateWindow(from, to time.Time) error {
	if from.IsZero() || to.IsZero() || !to.After(from) {
		return apperrors.NewValidationError("report window requires from < to", nil)
	}
	return nil
}
