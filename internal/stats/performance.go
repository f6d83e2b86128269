package stats

import (
	"sort"

	"github.com/helpdesk-kit/helpdesk-service/internal/domain"
)

// Rating is the qualitative label derived from a technician's score.
type Rating string

const (
	RatingExcellent        Rating = "Excellent"
	RatingGood             Rating = "Good"
	RatingFair             Rating = "Fair"
	RatingNeedsImprovement Rating = "Needs Improvement"
)

// TechnicianStats is the per-technician breakdown over a ticket window.
type TechnicianStats struct {
	TechnicianID       string  `json:"technician_id"`
	Total              int     `json:"total"`
	Resolved           int     `json:"resolved"`
	Unresolved         int     `json:"unresolved"`
	Hardware           int     `json:"hardware"`
	Software           int     `json:"software"`
	ResolutionPercent  float64 `json:"resolution_percent"`
	AvgAttendanceHours float64 `json:"avg_attendance_hours"`
	Score              int     `json:"score"`
	Rating             Rating  `json:"rating"`
}

// TechnicianPerformance groups claimed tickets by technician and scores
// each group. Pending tickets carry no technician and are skipped. Results
// are ordered by technician id.
func TechnicianPerformance(tickets []domain.Ticket) []TechnicianStats {
	groups := make(map[string][]*domain.Ticket)
	for i := range tickets {
		t := &tickets[i]
		if t.TechnicianID == nil || !t.Attended() {
			continue
		}
		groups[*t.TechnicianID] = append(groups[*t.TechnicianID], t)
	}

	result := make([]TechnicianStats, 0, len(groups))
	for technicianID, group := range groups {
		entry := TechnicianStats{TechnicianID: technicianID}
		var hoursSum float64
		var hoursCount int
		for _, t := range group {
			entry.Total++
			if t.Kind == domain.TicketKindHardware {
				entry.Hardware++
			} else {
				entry.Software++
			}
			switch t.Outcome {
			case domain.ResolutionResolved:
				entry.Resolved++
			case domain.ResolutionUnresolved:
				entry.Unresolved++
			}
			if t.AttendedAt != nil {
				hoursSum += t.AttendanceHours()
				hoursCount++
			}
		}
		if entry.Total > 0 {
			entry.ResolutionPercent = float64(entry.Resolved) / float64(entry.Total) * 100
		}
		if hoursCount > 0 {
			entry.AvgAttendanceHours = hoursSum / float64(hoursCount)
		}
		entry.Score = score(entry)
		entry.Rating = ratingFor(entry.Score)
		result = append(result, entry)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].TechnicianID < result[j].TechnicianID
	})
	return result
}

// score applies the point rubric: bands for resolution rate, average
// attendance time, and volume.
func score(s TechnicianStats) int {
	points := 0
	switch {
	case s.ResolutionPercent >= 90:
		points += 3
	case s.ResolutionPercent >= 75:
		points += 2
	case s.ResolutionPercent >= 50:
		points += 1
	}
	switch {
	case s.AvgAttendanceHours <= 2:
		points += 3
	case s.AvgAttendanceHours <= 8:
		points += 2
	case s.AvgAttendanceHours <= 24:
		points += 1
	}
	switch {
	case s.Total >= 20:
		points += 3
	case s.Total >= 10:
		points += 2
	case s.Total >= 5:
		points += 1
	}
	return points
}

func ratingFor(points int) Rating {
	switch {
	case points >= 7:
		return RatingExcellent
	case points >= 5:
		return RatingGood
	case points >= 3:
		return RatingFair
	default:
		return RatingNeedsImprovement
	}
}
