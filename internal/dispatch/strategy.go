package dispatch

import (
	"fmt"

	"github.com/helpdesk-kit/helpdesk-service/internal/domain"
)

// Strategy picks the next ticket to attend from a pool of pending tickets.
// Implementations are read-only over the pool and return nil when nothing
// is selectable.
type Strategy interface {
	SelectNext(pool []domain.Ticket) *domain.Ticket
}

// Known strategy names accepted by NewRegistry and the desk endpoints.
const (
	StrategyFIFO          = "fifo"
	StrategyLIFO          = "lifo"
	StrategyPriority      = "priority"
	StrategyHardwareFirst = "hardware-first"
	StrategySoftwareFirst = "software-first"
	StrategyRoundRobin    = "round-robin"
)

// Registry holds one instance per strategy so stateful strategies keep
// their state across calls.
type Registry struct {
	strategies map[string]Strategy
}

// NewRegistry builds the full strategy set. urgentKeywords feeds the
// priority strategy.
func NewRegistry(urgentKeywords []string) *Registry {
	return &Registry{strategies: map[string]Strategy{
		StrategyFIFO:          NewFIFO(),
		StrategyLIFO:          NewLIFO(),
		StrategyPriority:      NewPriority(urgentKeywords),
		StrategyHardwareFirst: NewTypeBased(domain.TicketKindHardware),
		StrategySoftwareFirst: NewTypeBased(domain.TicketKindSoftware),
		StrategyRoundRobin:    NewRoundRobin(),
	}}
}

// Get returns the named strategy.
func (r *Registry) Get(name string) (Strategy, error) {
	strategy, ok := r.strategies[name]
	if !ok {
		return nil, fmt.Errorf("unknown dispatch strategy %q", name)
	}
	return strategy, nil
}

// earliest returns the pending ticket with the lowest CreatedAt, breaking
// ties by ascending ID. filter may be nil to consider the whole pool.
func earliest(pool []domain.Ticket, filter func(*domain.Ticket) bool) *domain.Ticket {
	var best *domain.Ticket
	for i := range pool {
		ticket := &pool[i]
		if ticket.State != domain.TicketStatePending {
			continue
		}
		if filter != nil && !filter(ticket) {
			continue
		}
		if best == nil || ticket.CreatedAt.Before(best.CreatedAt) ||
			(ticket.CreatedAt.Equal(best.CreatedAt) && ticket.ID < best.ID) {
			best = ticket
		}
	}
	return best
}

// latest is the LIFO counterpart of earliest, with the same ID tie-break.
func latest(pool []domain.Ticket) *domain.Ticket {
	var best *domain.Ticket
	for i := range pool {
		ticket := &pool[i]
		if ticket.State != domain.TicketStatePending {
			continue
		}
		if best == nil || ticket.CreatedAt.After(best.CreatedAt) ||
			(ticket.CreatedAt.Equal(best.CreatedAt) && ticket.ID < best.ID) {
			best = ticket
		}
	}
	return best
}

func kindFilter(kind domain.TicketKind) func(*domain.Ticket) bool {
	return func(t *domain.Ticket) bool {
		return t.Kind == kind
	}
}
