package dispatch

import "github.com/helpdesk-kit/helpdesk-service/internal/domain"

// typeBasedStrategy prefers tickets of one kind, falling back to FIFO over
// the whole pool when none of that kind is pending.
type typeBasedStrategy struct {
	preferred domain.TicketKind
}

// NewTypeBased creates a strategy preferring the given ticket kind.
func NewTypeBased(preferred domain.TicketKind) Strategy {
	return typeBasedStrategy{preferred: preferred}
}

func (s typeBasedStrategy) SelectNext(pool []domain.Ticket) *domain.Ticket {
	if preferred := earliest(pool, kindFilter(s.preferred)); preferred != nil {
		return preferred
	}
	return earliest(pool, nil)
}
