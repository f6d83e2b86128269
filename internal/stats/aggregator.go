// Package stats computes read-only summaries over ticket collections. All
// functions are pure over their input slice and safe for concurrent use.
package stats

import "github.com/helpdesk-kit/helpdesk-service/internal/domain"

// Summary captures window-level volume and rate figures.
type Summary struct {
	Total             int     `json:"total"`
	Attended          int     `json:"attended"`
	Completed         int     `json:"completed"`
	Resolved          int     `json:"resolved"`
	Unresolved        int     `json:"unresolved"`
	Hardware          int     `json:"hardware"`
	Software          int     `json:"software"`
	AttendancePercent float64 `json:"attendance_percent"`
	ResolutionPercent float64 `json:"resolution_percent"`
}

// Summarize computes counts and percentages for a ticket window. Both
// percentages are defined as 0 when their denominator is 0.
func Summarize(tickets []domain.Ticket) Summary {
	var s Summary
	for i := range tickets {
		t := &tickets[i]
		s.Total++
		if t.Kind == domain.TicketKindHardware {
			s.Hardware++
		} else {
			s.Software++
		}
		if t.Attended() {
			s.Attended++
		}
		if t.State == domain.TicketStateCompleted {
			s.Completed++
			switch t.Outcome {
			case domain.ResolutionResolved:
				s.Resolved++
			case domain.ResolutionUnresolved:
				s.Unresolved++
			}
		}
	}
	if s.Total > 0 {
		s.AttendancePercent = float64(s.Attended) / float64(s.Total) * 100
	}
	if s.Attended > 0 {
		s.ResolutionPercent = float64(s.Resolved) / float64(s.Attended) * 100
	}
	return s
}

// AttendanceTimes holds mean creation-to-attendance hours per kind and the
// count-weighted overall mean.
type AttendanceTimes struct {
	HardwareAvgHours float64 `json:"hardware_avg_hours"`
	HardwareCount    int     `json:"hardware_count"`
	SoftwareAvgHours float64 `json:"software_avg_hours"`
	SoftwareCount    int     `json:"software_count"`
	OverallAvgHours  float64 `json:"overall_avg_hours"`
}

// AverageAttendanceTimes computes mean attendance delay over tickets with
// a set attendance timestamp, independently per kind.
func AverageAttendanceTimes(tickets []domain.Ticket) AttendanceTimes {
	var hwSum, swSum float64
	var result AttendanceTimes
	for i := range tickets {
		t := &tickets[i]
		if t.AttendedAt == nil {
			continue
		}
		hours := t.AttendanceHours()
		if t.Kind == domain.TicketKindHardware {
			hwSum += hours
			result.HardwareCount++
		} else {
			swSum += hours
			result.SoftwareCount++
		}
	}
	if result.HardwareCount > 0 {
		result.HardwareAvgHours = hwSum / float64(result.HardwareCount)
	}
	if result.SoftwareCount > 0 {
		result.SoftwareAvgHours = swSum / float64(result.SoftwareCount)
	}
	total := result.HardwareCount + result.SoftwareCount
	if total > 0 {
		result.OverallAvgHours = (result.HardwareAvgHours*float64(result.HardwareCount) +
			result.SoftwareAvgHours*float64(result.SoftwareCount)) / float64(total)
	}
	return result
}
