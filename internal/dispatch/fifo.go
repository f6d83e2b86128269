package dispatch

import "github.com/helpdesk-kit/helpdesk-service/internal/domain"

// fifoStrategy attends the oldest pending ticket first.
type fifoStrategy struct{}

// NewFIFO creates the first-in-first-out strategy.
func NewFIFO() Strategy {
	return fifoStrategy{}
}

func (fifoStrategy) SelectNext(pool []domain.Ticket) *domain.Ticket {
	return earliest(pool, nil)
}
