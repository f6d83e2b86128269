package dispatch

import (
	"sync"

	"github.com/helpdesk-kit/helpdesk-service/internal/domain"
)

// roundRobinStrategy alternates between hardware and software tickets. The
// only state is the kind served last, private to the instance.
type roundRobinStrategy struct {
	mu       sync.Mutex
	lastKind domain.TicketKind
}

// NewRoundRobin creates the alternating strategy. The first call behaves as
// if a software ticket was served last, so hardware goes first.
func NewRoundRobin() Strategy {
	return &roundRobinStrategy{lastKind: domain.TicketKindSoftware}
}

func (s *roundRobinStrategy) SelectNext(pool []domain.Ticket) *domain.Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := otherKind(s.lastKind)
	if ticket := earliest(pool, kindFilter(next)); ticket != nil {
		s.lastKind = next
		return ticket
	}
	if ticket := earliest(pool, kindFilter(s.lastKind)); ticket != nil {
		return ticket
	}
	// Neither kind matched; take whatever is pending, order unspecified.
	if ticket := earliest(pool, nil); ticket != nil {
		s.lastKind = ticket.Kind
		return ticket
	}
	return nil
}

func otherKind(kind domain.TicketKind) domain.TicketKind {
	if kind == domain.TicketKindHardware {
		return domain.TicketKindSoftware
	}
	return domain.TicketKindHardware
}
