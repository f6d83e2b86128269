package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helpdesk-kit/helpdesk-service/internal/domain"
	apperrors "github.com/helpdesk-kit/helpdesk-service/pkg/util"
)

func seedCompletedTicket(repo *fakeTicketRepo, kind domain.TicketKind, outcome domain.ResolutionOutcome, createdAt time.Time, technicianID string, attendanceDelayHours float64) {
	repo.nextID++
	attendedAt := createdAt.Add(time.Duration(attendanceDelayHours * float64(time.Hour)))
	completedAt := attendedAt.Add(30 * time.Minute)
	ticket := domain.Ticket{
		ID:           fmtTicketID(repo.nextID),
		ExternalKey:  "HD-SEED" + fmtTicketID(repo.nextID),
		SubmitterID:  employee.ID,
		Kind:         kind,
		State:        domain.TicketStateCompleted,
		Outcome:      outcome,
		TechnicianID: &technicianID,
		CreatedAt:    createdAt,
		AttendedAt:   &attendedAt,
		CompletedAt:  &completedAt,
		UpdatedAt:    completedAt,
	}
	repo.tickets[ticket.ID] = ticket
}

func fmtTicketID(n int) string {
	return fmt.Sprintf("tkt-%03d", n)
}

func TestReportSummary(t *testing.T) {
	tickets := newFakeTicketRepo()
	svc := NewReportService(tickets, newFakeUserRepo(employee, technician))

	from := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)
	seedCompletedTicket(tickets, domain.TicketKindHardware, domain.ResolutionResolved, from.Add(24*time.Hour), technician.ID, 2)
	seedCompletedTicket(tickets, domain.TicketKindSoftware, domain.ResolutionUnresolved, from.Add(48*time.Hour), technician.ID, 4)
	// Outside the window; must not count.
	seedCompletedTicket(tickets, domain.TicketKindHardware, domain.ResolutionResolved, from.Add(-time.Hour), technician.ID, 1)

	report, err := svc.Summary(context.Background(), from, to)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Summary.Total)
	assert.Equal(t, 2, report.Summary.Attended)
	assert.Equal(t, 1, report.Summary.Resolved)
	assert.Equal(t, 1, report.Summary.Unresolved)
	assert.InDelta(t, 100.0, report.Summary.AttendancePercent, 0.01)
	assert.InDelta(t, 50.0, report.Summary.ResolutionPercent, 0.01)
	assert.InDelta(t, 3.0, report.Times.OverallAvgHours, 0.01)
}

func TestReportSummary_InvalidWindow(t *testing.T) {
	svc := NewReportService(newFakeTicketRepo(), newFakeUserRepo())

	from := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	_, err := svc.Summary(context.Background(), from, from)
	assert.True(t, apperrors.IsCode(err, "VALIDATION_FAILED"))

	_, err = svc.Summary(context.Background(), from, from.Add(-time.Hour))
	assert.True(t, apperrors.IsCode(err, "VALIDATION_FAILED"))
}

func TestTechnicianPerformance_ResolvesNames(t *testing.T) {
	tickets := newFakeTicketRepo()
	svc := NewReportService(tickets, newFakeUserRepo(employee, technician))

	from := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)
	seedCompletedTicket(tickets, domain.TicketKindHardware, domain.ResolutionResolved, from.Add(time.Hour), technician.ID, 1)
	seedCompletedTicket(tickets, domain.TicketKindSoftware, domain.ResolutionResolved, from.Add(2*time.Hour), "user-ghost", 1)

	reports, err := svc.TechnicianPerformance(context.Background(), from, to)
	require.NoError(t, err)
	require.Len(t, reports, 2)

	byID := map[string]TechnicianReport{}
	for _, report := range reports {
		byID[report.TechnicianID] = report
	}
	assert.Equal(t, technician.FullName, byID[technician.ID].TechnicianName)
	// Deleted accounts keep the raw id and an empty name.
	assert.Empty(t, byID["user-ghost"].TechnicianName)
}

func TestTrend_ComparesAdjacentWindows(t *testing.T) {
	tickets := newFakeTicketRepo()
	svc := NewReportService(tickets, newFakeUserRepo(technician))

	from := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)
	// Previous window: one ticket. Current window: two tickets.
	seedCompletedTicket(tickets, domain.TicketKindHardware, domain.ResolutionResolved, from.Add(-15*24*time.Hour), technician.ID, 1)
	seedCompletedTicket(tickets, domain.TicketKindHardware, domain.ResolutionResolved, from.Add(time.Hour), technician.ID, 1)
	seedCompletedTicket(tickets, domain.TicketKindSoftware, domain.ResolutionResolved, from.Add(2*time.Hour), technician.ID, 1)

	trend, err := svc.Trend(context.Background(), from, to)
	require.NoError(t, err)
	assert.Equal(t, 2, trend.Current.Total)
	assert.Equal(t, 1, trend.Previous.Total)
	assert.InDelta(t, 100.0, trend.TotalChangePercent, 0.01)
}
