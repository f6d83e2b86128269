package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helpdesk-kit/helpdesk-service/internal/dispatch"
	"github.com/helpdesk-kit/helpdesk-service/internal/domain"
	"github.com/helpdesk-kit/helpdesk-service/internal/events"
	apperrors "github.com/helpdesk-kit/helpdesk-service/pkg/util"
)

// fakeTicketRepo is an in-memory TicketRepository. beforeGuard, when set,
// runs right before a guarded update to simulate a concurrent writer.
type fakeTicketRepo struct {
	tickets     map[string]domain.Ticket
	nextID      int
	beforeGuard func()
}

func newFakeTicketRepo() *fakeTicketRepo {
	return &fakeTicketRepo{tickets: make(map[string]domain.Ticket)}
}

func (r *fakeTicketRepo) Insert(_ context.Context, ticket *domain.Ticket) error {
	r.nextID++
	ticket.ID = fmt.Sprintf("tkt-%03d", r.nextID)
	ticket.CreatedAt = time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC).Add(time.Duration(r.nextID) * time.Minute)
	ticket.UpdatedAt = ticket.CreatedAt
	r.tickets[ticket.ID] = *ticket
	return nil
}

func (r *fakeTicketRepo) Update(_ context.Context, ticket *domain.Ticket) error {
	if _, ok := r.tickets[ticket.ID]; !ok {
		return pgx.ErrNoRows
	}
	r.tickets[ticket.ID] = *ticket
	return nil
}

func (r *fakeTicketRepo) UpdateStateGuarded(_ context.Context, ticket *domain.Ticket, expected domain.TicketState) error {
	if r.beforeGuard != nil {
		r.beforeGuard()
		r.beforeGuard = nil
	}
	stored, ok := r.tickets[ticket.ID]
	if !ok || stored.State != expected {
		return pgx.ErrNoRows
	}
	r.tickets[ticket.ID] = *ticket
	return nil
}

func (r *fakeTicketRepo) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	stored, ok := r.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := stored
	return &copied, nil
}

func (r *fakeTicketRepo) GetByExternalKey(_ context.Context, key string) (*domain.Ticket, error) {
	for _, stored := range r.tickets {
		if stored.ExternalKey == key {
			copied := stored
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeTicketRepo) ListByState(_ context.Context, state domain.TicketState) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for _, stored := range r.tickets {
		if stored.State == state {
			result = append(result, stored)
		}
	}
	return result, nil
}

func (r *fakeTicketRepo) ListBySubmitter(_ context.Context, submitterID string, _, _ int) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for _, stored := range r.tickets {
		if stored.SubmitterID == submitterID {
			result = append(result, stored)
		}
	}
	return result, nil
}

func (r *fakeTicketRepo) ListByTechnician(_ context.Context, technicianID string, _, _ int) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for _, stored := range r.tickets {
		if stored.TechnicianID != nil && *stored.TechnicianID == technicianID {
			result = append(result, stored)
		}
	}
	return result, nil
}

func (r *fakeTicketRepo) ListByDateRange(_ context.Context, from, to time.Time) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for _, stored := range r.tickets {
		if !stored.CreatedAt.Before(from) && stored.CreatedAt.Before(to) {
			result = append(result, stored)
		}
	}
	return result, nil
}

type fakeUserRepo struct {
	users map[string]domain.User
}

func newFakeUserRepo(users ...domain.User) *fakeUserRepo {
	repo := &fakeUserRepo{users: make(map[string]domain.User)}
	for _, user := range users {
		repo.users[user.ID] = user
	}
	return repo
}

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	if user.ID == "" {
		user.ID = fmt.Sprintf("user-%03d", len(r.users)+1)
	}
	r.users[user.ID] = *user
	return nil
}

func (r *fakeUserRepo) Update(_ context.Context, user *domain.User) error {
	if _, ok := r.users[user.ID]; !ok {
		return pgx.ErrNoRows
	}
	r.users[user.ID] = *user
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	stored, ok := r.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := stored
	return &copied, nil
}

func (r *fakeUserRepo) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	for _, stored := range r.users {
		if stored.Username == username {
			copied := stored
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, stored := range r.users {
		if stored.Email == email {
			copied := stored
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

type fakeHistoryRepo struct {
	entries []domain.TicketHistory
}

func (r *fakeHistoryRepo) Create(_ context.Context, entry *domain.TicketHistory) error {
	entry.ID = fmt.Sprintf("hist-%03d", len(r.entries)+1)
	entry.CreatedAt = time.Now()
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *fakeHistoryRepo) ListByTicket(_ context.Context, ticketID string, _, _ int) ([]domain.TicketHistory, error) {
	var result []domain.TicketHistory
	for _, entry := range r.entries {
		if entry.TicketID == ticketID {
			result = append(result, entry)
		}
	}
	return result, nil
}

type capturingDispatcher struct {
	published []events.Event
}

func (d *capturingDispatcher) Publish(_ context.Context, event events.Event) error {
	d.published = append(d.published, event)
	return nil
}

func (d *capturingDispatcher) Subscribe(events.EventType, events.EventHandler) {}

var (
	employee = domain.User{
		ID: "user-emp", Username: "alice", FullName: "Alice Prado",
		Role: domain.RoleEmployee, Active: true,
	}
	technician = domain.User{
		ID: "user-tech", Username: "bruno", FullName: "Bruno Costa",
		Role: domain.RoleTechnician, Active: true,
	}
	inactiveTech = domain.User{
		ID: "user-gone", Username: "carla", FullName: "Carla Dias",
		Role: domain.RoleTechnician, Active: false,
	}
)

type lifecycleFixture struct {
	service    *LifecycleService
	tickets    *fakeTicketRepo
	history    *fakeHistoryRepo
	dispatcher *capturingDispatcher
}

func newLifecycleFixture() *lifecycleFixture {
	tickets := newFakeTicketRepo()
	history := &fakeHistoryRepo{}
	dispatcher := &capturingDispatcher{}
	svc := NewLifecycleService(LifecycleDependencies{
		TicketRepo:  tickets,
		UserRepo:    newFakeUserRepo(employee, technician, inactiveTech),
		HistoryRepo: history,
		Dispatcher:  dispatcher,
		Strategies:  dispatch.NewRegistry([]string{"servidor"}),
	})
	return &lifecycleFixture{service: svc, tickets: tickets, history: history, dispatcher: dispatcher}
}

func hardwareInput(problem string) TicketCreateInput {
	return TicketCreateInput{
		Kind:                   domain.TicketKindHardware,
		Equipment:              "Dell Latitude 5520",
		MalfunctionDescription: problem,
	}
}

func TestCreate_Hardware(t *testing.T) {
	f := newLifecycleFixture()

	ticket, err := f.service.Create(context.Background(), employee.ID, hardwareInput("screen flickers"))
	require.NoError(t, err)
	assert.NotEmpty(t, ticket.ID)
	assert.NotEmpty(t, ticket.ExternalKey)
	assert.Equal(t, domain.TicketStatePending, ticket.State)
	assert.Equal(t, domain.ResolutionOpen, ticket.Outcome)
	assert.Nil(t, ticket.TechnicianID)
	assert.Nil(t, ticket.AttendedAt)

	require.Len(t, f.dispatcher.published, 1)
	assert.Equal(t, events.EventTicketCreated, f.dispatcher.published[0].Type)
	require.Len(t, f.history.entries, 1)
	assert.Equal(t, domain.ChangeTypeCreated, f.history.entries[0].ChangeType)
}

func TestCreate_ValidationFailures(t *testing.T) {
	f := newLifecycleFixture()
	ctx := context.Background()

	_, err := f.service.Create(ctx, employee.ID, TicketCreateInput{
		Kind:      domain.TicketKindHardware,
		Equipment: "printer",
	})
	assert.True(t, apperrors.IsCode(err, "VALIDATION_FAILED"))

	_, err = f.service.Create(ctx, employee.ID, TicketCreateInput{
		Kind:         domain.TicketKindSoftware,
		SoftwareName: "ERP",
	})
	assert.True(t, apperrors.IsCode(err, "VALIDATION_FAILED"))

	_, err = f.service.Create(ctx, employee.ID, TicketCreateInput{Kind: "NETWORK"})
	assert.True(t, apperrors.IsCode(err, "VALIDATION_FAILED"))

	_, err = f.service.Create(ctx, inactiveTech.ID, hardwareInput("x"))
	assert.True(t, apperrors.IsCode(err, "VALIDATION_FAILED"))

	_, err = f.service.Create(ctx, "nobody", hardwareInput("x"))
	assert.True(t, apperrors.IsCode(err, "NOT_FOUND"))
}

func TestClaimComplete_RoundTrip(t *testing.T) {
	f := newLifecycleFixture()
	ctx := context.Background()

	created, err := f.service.Create(ctx, employee.ID, hardwareInput("no power"))
	require.NoError(t, err)

	claimed, err := f.service.Claim(ctx, technician.ID, created.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStateInProgress, claimed.State)
	require.NotNil(t, claimed.TechnicianID)
	assert.Equal(t, technician.ID, *claimed.TechnicianID)
	assert.NotNil(t, claimed.AttendedAt)

	completed, err := f.service.Complete(ctx, technician.ID, created.ID, CompletionInput{
		Outcome:           domain.ResolutionResolved,
		RepairDescription: "replaced power supply",
		PartsUsed:         "PSU 450W",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStateCompleted, completed.State)
	assert.Equal(t, domain.ResolutionResolved, completed.Outcome)
	assert.Equal(t, "replaced power supply", completed.RepairDescription)
	assert.NotNil(t, completed.AttendedAt)
	assert.NotNil(t, completed.CompletedAt)

	// created -> claimed -> completed audit entries.
	assert.Len(t, f.history.entries, 3)
	require.Len(t, f.dispatcher.published, 3)
	assert.Equal(t, events.EventTicketCompleted, f.dispatcher.published[2].Type)
}

func TestClaim_Failures(t *testing.T) {
	f := newLifecycleFixture()
	ctx := context.Background()

	created, err := f.service.Create(ctx, employee.ID, hardwareInput("dead keyboard"))
	require.NoError(t, err)

	_, err = f.service.Claim(ctx, employee.ID, created.ID)
	assert.True(t, apperrors.IsCode(err, "PERMISSION_DENIED"))

	_, err = f.service.Claim(ctx, inactiveTech.ID, created.ID)
	assert.True(t, apperrors.IsCode(err, "PERMISSION_DENIED"))

	_, err = f.service.Claim(ctx, technician.ID, "tkt-missing")
	assert.True(t, apperrors.IsCode(err, "NOT_FOUND"))

	_, err = f.service.Claim(ctx, technician.ID, created.ID)
	require.NoError(t, err)

	// A second claim must fail, never silently succeed.
	_, err = f.service.Claim(ctx, technician.ID, created.ID)
	assert.True(t, apperrors.IsCode(err, "INVALID_STATE"))

	stored, err := f.tickets.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStateInProgress, stored.State)
}

func TestClaim_RaceLostSurfacesInvalidState(t *testing.T) {
	f := newLifecycleFixture()
	ctx := context.Background()

	created, err := f.service.Create(ctx, employee.ID, hardwareInput("fan noise"))
	require.NoError(t, err)

	// Another technician wins the race between the read and the write.
	f.tickets.beforeGuard = func() {
		stored := f.tickets.tickets[created.ID]
		stored.State = domain.TicketStateInProgress
		other := "user-other"
		stored.TechnicianID = &other
		f.tickets.tickets[created.ID] = stored
	}

	_, err = f.service.Claim(ctx, technician.ID, created.ID)
	assert.True(t, apperrors.IsCode(err, "INVALID_STATE"))

	stored, err := f.tickets.GetByID(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.TechnicianID)
	assert.Equal(t, "user-other", *stored.TechnicianID)
}

func TestComplete_Failures(t *testing.T) {
	f := newLifecycleFixture()
	ctx := context.Background()

	created, err := f.service.Create(ctx, employee.ID, hardwareInput("hdd clicking"))
	require.NoError(t, err)

	// Not yet claimed.
	_, err = f.service.Complete(ctx, technician.ID, created.ID, CompletionInput{
		Outcome:           domain.ResolutionResolved,
		RepairDescription: "swap disk",
	})
	assert.True(t, apperrors.IsCode(err, "INVALID_STATE"))

	_, err = f.service.Claim(ctx, technician.ID, created.ID)
	require.NoError(t, err)

	_, err = f.service.Complete(ctx, technician.ID, created.ID, CompletionInput{
		Outcome: domain.ResolutionResolved,
	})
	assert.True(t, apperrors.IsCode(err, "VALIDATION_FAILED"))

	_, err = f.service.Complete(ctx, technician.ID, created.ID, CompletionInput{
		Outcome:           domain.ResolutionOpen,
		RepairDescription: "swap disk",
	})
	assert.True(t, apperrors.IsCode(err, "VALIDATION_FAILED"))

	_, err = f.service.Complete(ctx, technician.ID, created.ID, CompletionInput{
		Outcome:           domain.ResolutionUnresolved,
		RepairDescription: "vendor RMA needed",
	})
	require.NoError(t, err)

	// Completed is terminal.
	_, err = f.service.Complete(ctx, technician.ID, created.ID, CompletionInput{
		Outcome:           domain.ResolutionResolved,
		RepairDescription: "again",
	})
	assert.True(t, apperrors.IsCode(err, "INVALID_STATE"))
}

func TestComplete_SoftwareRequiresIntervention(t *testing.T) {
	f := newLifecycleFixture()
	ctx := context.Background()

	created, err := f.service.Create(ctx, employee.ID, TicketCreateInput{
		Kind:            domain.TicketKindSoftware,
		SoftwareName:    "ERP",
		NeedDescription: "cannot issue invoices",
	})
	require.NoError(t, err)

	_, err = f.service.Claim(ctx, technician.ID, created.ID)
	require.NoError(t, err)

	_, err = f.service.Complete(ctx, technician.ID, created.ID, CompletionInput{
		Outcome: domain.ResolutionResolved,
	})
	assert.True(t, apperrors.IsCode(err, "VALIDATION_FAILED"))

	completed, err := f.service.Complete(ctx, technician.ID, created.ID, CompletionInput{
		Outcome:                 domain.ResolutionResolved,
		InterventionDescription: "reissued license key",
	})
	require.NoError(t, err)
	assert.Equal(t, "reissued license key", completed.InterventionDescription)
}

func TestNextTicket_UsesStrategy(t *testing.T) {
	f := newLifecycleFixture()
	ctx := context.Background()

	first, err := f.service.Create(ctx, employee.ID, hardwareInput("oldest"))
	require.NoError(t, err)
	_, err = f.service.Create(ctx, employee.ID, hardwareInput("newer"))
	require.NoError(t, err)

	next, err := f.service.NextTicket(ctx, dispatch.StrategyFIFO)
	require.NoError(t, err)
	require.NotNil(t, next)
	assert.Equal(t, first.ID, next.ID)

	// Selection is read-only; the ticket stays pending.
	stored, err := f.tickets.GetByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatePending, stored.State)

	_, err = f.service.NextTicket(ctx, "no-such-strategy")
	assert.True(t, apperrors.IsCode(err, "VALIDATION_FAILED"))
}

func TestNextTicket_EmptyPool(t *testing.T) {
	f := newLifecycleFixture()

	next, err := f.service.NextTicket(context.Background(), "")
	require.NoError(t, err)
	assert.Nil(t, next)
}

func TestGetTicketFor_EmployeeOwnership(t *testing.T) {
	f := newLifecycleFixture()
	ctx := context.Background()

	created, err := f.service.Create(ctx, employee.ID, hardwareInput("loose hinge"))
	require.NoError(t, err)

	owner := employee
	got, err := f.service.GetTicketFor(ctx, &owner, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)

	stranger := domain.User{ID: "user-x", Role: domain.RoleEmployee, Active: true}
	_, err = f.service.GetTicketFor(ctx, &stranger, created.ID)
	assert.True(t, apperrors.IsCode(err, "PERMISSION_DENIED"))

	tech := technician
	_, err = f.service.GetTicketFor(ctx, &tech, created.ID)
	assert.NoError(t, err)

	// External keys resolve to the same ticket.
	byKey, err := f.service.GetTicketFor(ctx, &owner, created.ExternalKey)
	require.NoError(t, err)
	assert.Equal(t, created.ID, byKey.ID)
}
