package dispatch

import "github.com/helpdesk-kit/helpdesk-service/internal/domain"

// lifoStrategy attends the newest pending ticket first.
type lifoStrategy struct{}

// NewLIFO creates the last-in-first-out strategy.
func NewLIFO() Strategy {
	return lifoStrategy{}
}

func (lifoStrategy) SelectNext(pool []domain.Ticket) *domain.Ticket {
	return latest(pool)
}
