package stats

import "github.com/helpdesk-kit/helpdesk-service/internal/domain"

// TrendDirection is the overall movement between two equal-length windows.
type TrendDirection string

const (
	TrendUp     TrendDirection = "up"
	TrendDown   TrendDirection = "down"
	TrendStable TrendDirection = "stable"
)

// Trend compares a window against the immediately preceding one.
type Trend struct {
	Current                    Summary        `json:"current"`
	Previous                   Summary        `json:"previous"`
	TotalChangePercent         float64        `json:"total_change_percent"`
	AttendanceRateChangePoints float64        `json:"attendance_rate_change_points"`
	ResolutionRateChangePoints float64        `json:"resolution_rate_change_points"`
	Direction                  TrendDirection `json:"direction"`
}

// Vote thresholds: a delta below its threshold is a neutral vote.
const (
	totalChangeThresholdPercent = 5.0
	rateChangeThresholdPoints   = 2.0
)

// CompareWindows computes period-over-period movement. Direction is the
// majority vote of the three deltas; a tie is stable.
func CompareWindows(current, previous []domain.Ticket) Trend {
	cur := Summarize(current)
	prev := Summarize(previous)

	t := Trend{
		Current:                    cur,
		Previous:                   prev,
		TotalChangePercent:         PercentChange(float64(prev.Total), float64(cur.Total)),
		AttendanceRateChangePoints: cur.AttendancePercent - prev.AttendancePercent,
		ResolutionRateChangePoints: cur.ResolutionPercent - prev.ResolutionPercent,
	}

	up, down := 0, 0
	countVote(t.TotalChangePercent, totalChangeThresholdPercent, &up, &down)
	countVote(t.AttendanceRateChangePoints, rateChangeThresholdPoints, &up, &down)
	countVote(t.ResolutionRateChangePoints, rateChangeThresholdPoints, &up, &down)

	switch {
	case up > down:
		t.Direction = TrendUp
	case down > up:
		t.Direction = TrendDown
	default:
		t.Direction = TrendStable
	}
	return t
}

// PercentChange is (next-prev)/prev*100, defined for prev=0 as 100 when
// next>0 and 0 otherwise.
func PercentChange(prev, next float64) float64 {
	if prev == 0 {
		if next > 0 {
			return 100
		}
		return 0
	}
	return (next - prev) / prev * 100
}

func countVote(delta, threshold float64, up, down *int) {
	if delta > threshold {
		*up++
	} else if delta < -threshold {
		*down++
	}
}
