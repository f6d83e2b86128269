package dispatch

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helpdesk-kit/helpdesk-service/internal/domain"
)

var baseTime = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

func pendingTicket(id string, kind domain.TicketKind, minuteOffset int, problem string) domain.Ticket {
	t := domain.Ticket{
		ID:        id,
		Kind:      kind,
		State:     domain.TicketStatePending,
		CreatedAt: baseTime.Add(time.Duration(minuteOffset) * time.Minute),
	}
	if kind == domain.TicketKindHardware {
		t.MalfunctionDescription = problem
	} else {
		t.NeedDescription = problem
	}
	return t
}

func TestFIFO_SelectsOldest(t *testing.T) {
	pool := []domain.Ticket{
		pendingTicket("t3", domain.TicketKindHardware, 3, "mouse broken"),
		pendingTicket("t1", domain.TicketKindHardware, 1, "keyboard broken"),
		pendingTicket("t2", domain.TicketKindSoftware, 2, "need excel"),
	}

	selected := NewFIFO().SelectNext(pool)
	require.NotNil(t, selected)
	assert.Equal(t, "t1", selected.ID)

	// After claiming t1, the next call yields t2.
	remaining := []domain.Ticket{pool[0], pool[2]}
	selected = NewFIFO().SelectNext(remaining)
	require.NotNil(t, selected)
	assert.Equal(t, "t2", selected.ID)
}

func TestFIFO_TieBreaksByID(t *testing.T) {
	pool := []domain.Ticket{
		pendingTicket("b", domain.TicketKindHardware, 0, "x"),
		pendingTicket("a", domain.TicketKindHardware, 0, "y"),
	}
	selected := NewFIFO().SelectNext(pool)
	require.NotNil(t, selected)
	assert.Equal(t, "a", selected.ID)
}

func TestFIFO_IgnoresNonPending(t *testing.T) {
	claimed := pendingTicket("t1", domain.TicketKindHardware, 0, "x")
	claimed.State = domain.TicketStateInProgress
	pool := []domain.Ticket{
		claimed,
		pendingTicket("t2", domain.TicketKindHardware, 5, "y"),
	}
	selected := NewFIFO().SelectNext(pool)
	require.NotNil(t, selected)
	assert.Equal(t, "t2", selected.ID)
}

func TestLIFO_SelectsNewest(t *testing.T) {
	pool := []domain.Ticket{
		pendingTicket("t1", domain.TicketKindHardware, 1, "x"),
		pendingTicket("t3", domain.TicketKindSoftware, 3, "y"),
		pendingTicket("t2", domain.TicketKindHardware, 2, "z"),
	}
	selected := NewLIFO().SelectNext(pool)
	require.NotNil(t, selected)
	assert.Equal(t, "t3", selected.ID)
}

func TestStrategies_EmptyPool(t *testing.T) {
	strategies := []Strategy{
		NewFIFO(),
		NewLIFO(),
		NewPriority([]string{"servidor"}),
		NewTypeBased(domain.TicketKindHardware),
		NewRoundRobin(),
	}
	for _, strategy := range strategies {
		assert.Nil(t, strategy.SelectNext(nil))
		assert.Nil(t, strategy.SelectNext([]domain.Ticket{}))
	}
}

func TestPriority_UrgentBeatsOlder(t *testing.T) {
	pool := []domain.Ticket{
		pendingTicket("t1", domain.TicketKindHardware, 1, "printer jam"),
		pendingTicket("t2", domain.TicketKindHardware, 2, "monitor flicker"),
		pendingTicket("t3", domain.TicketKindHardware, 3, "o SERVIDOR caiu"),
	}
	strategy := NewPriority([]string{"servidor", "urgente"})
	selected := strategy.SelectNext(pool)
	require.NotNil(t, selected)
	assert.Equal(t, "t3", selected.ID)
}

func TestPriority_FallsBackToFIFO(t *testing.T) {
	pool := []domain.Ticket{
		pendingTicket("t2", domain.TicketKindSoftware, 2, "need word"),
		pendingTicket("t1", domain.TicketKindSoftware, 1, "need excel"),
	}
	strategy := NewPriority([]string{"servidor"})
	selected := strategy.SelectNext(pool)
	require.NotNil(t, selected)
	assert.Equal(t, "t1", selected.ID)
}

func TestTypeBased_PrefersKind(t *testing.T) {
	pool := []domain.Ticket{
		pendingTicket("hw1", domain.TicketKindHardware, 1, "x"),
		pendingTicket("sw1", domain.TicketKindSoftware, 2, "y"),
	}
	selected := NewTypeBased(domain.TicketKindSoftware).SelectNext(pool)
	require.NotNil(t, selected)
	assert.Equal(t, "sw1", selected.ID)
}

func TestTypeBased_FallsBackWhenKindAbsent(t *testing.T) {
	pool := []domain.Ticket{
		pendingTicket("hw2", domain.TicketKindHardware, 2, "x"),
		pendingTicket("hw1", domain.TicketKindHardware, 1, "y"),
	}
	selected := NewTypeBased(domain.TicketKindSoftware).SelectNext(pool)
	require.NotNil(t, selected)
	assert.Equal(t, "hw1", selected.ID)
}

func TestRoundRobin_AlternatesKinds(t *testing.T) {
	strategy := NewRoundRobin()

	pool := []domain.Ticket{
		pendingTicket("hw1", domain.TicketKindHardware, 1, "x"),
		pendingTicket("sw1", domain.TicketKindSoftware, 2, "y"),
		pendingTicket("hw2", domain.TicketKindHardware, 3, "z"),
	}
	first := strategy.SelectNext(pool)
	require.NotNil(t, first)
	assert.Equal(t, "hw1", first.ID)

	// hw1 claimed; the other kind is due now.
	pool = []domain.Ticket{
		pendingTicket("sw1", domain.TicketKindSoftware, 2, "y"),
		pendingTicket("hw2", domain.TicketKindHardware, 3, "z"),
	}
	second := strategy.SelectNext(pool)
	require.NotNil(t, second)
	assert.Equal(t, "sw1", second.ID)
}

func TestRoundRobin_FallsBackToSameKind(t *testing.T) {
	strategy := NewRoundRobin()

	pool := []domain.Ticket{pendingTicket("sw1", domain.TicketKindSoftware, 1, "x")}
	first := strategy.SelectNext(pool)
	require.NotNil(t, first)
	assert.Equal(t, "sw1", first.ID)

	// Only software remains; the strategy serves it again.
	pool = []domain.Ticket{pendingTicket("sw2", domain.TicketKindSoftware, 2, "y")}
	second := strategy.SelectNext(pool)
	require.NotNil(t, second)
	assert.Equal(t, "sw2", second.ID)
}

func TestRegistry_KnownAndUnknown(t *testing.T) {
	registry := NewRegistry([]string{"servidor"})
	for _, name := range []string{
		StrategyFIFO, StrategyLIFO, StrategyPriority,
		StrategyHardwareFirst, StrategySoftwareFirst, StrategyRoundRobin,
	} {
		strategy, err := registry.Get(name)
		require.NoError(t, err)
		assert.NotNil(t, strategy)
	}

	_, err := registry.Get("shortest-job-first")
	assert.Error(t, err)
}

func TestStrategies_DoNotMutatePool(t *testing.T) {
	pool := []domain.Ticket{
		pendingTicket("t1", domain.TicketKindHardware, 1, "x"),
		pendingTicket("t2", domain.TicketKindSoftware, 2, "y"),
	}
	snapshot := make([]domain.Ticket, len(pool))
	copy(snapshot, pool)

	NewFIFO().SelectNext(pool)
	NewLIFO().SelectNext(pool)
	NewPriority([]string{"servidor"}).SelectNext(pool)
	NewRoundRobin().SelectNext(pool)

	assert.Equal(t, snapshot, pool)
}
