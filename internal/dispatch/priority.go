package dispatch

import (
	"strings"

	"github.com/helpdesk-kit/helpdesk-service/internal/domain"
)

// priorityStrategy attends urgent tickets first, FIFO within each band.
// Urgency is a case-insensitive keyword match over the ticket's problem
// text.
type priorityStrategy struct {
	keywords []string
}

// NewPriority creates the priority strategy with the given urgency keywords.
func NewPriority(keywords []string) Strategy {
	lowered := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		if trimmed := strings.TrimSpace(strings.ToLower(kw)); trimmed != "" {
			lowered = append(lowered, trimmed)
		}
	}
	return priorityStrategy{keywords: lowered}
}

func (s priorityStrategy) SelectNext(pool []domain.Ticket) *domain.Ticket {
	if urgent := earliest(pool, s.isUrgent); urgent != nil {
		return urgent
	}
	return earliest(pool, nil)
}

func (s priorityStrategy) isUrgent(t *domain.Ticket) bool {
	text := strings.ToLower(t.ProblemText())
	for _, kw := range s.keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
