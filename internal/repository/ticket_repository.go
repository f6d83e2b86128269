package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/helpdesk-kit/helpdesk-service/internal/domain"
)

const ticketColumns = `id, external_key, submitter_id, kind, lifecycle_state, resolution_outcome,
               technician_id, equipment, malfunction_description, repair_description, parts_used,
               software_name, need_description, intervention_description,
               created_at, attended_at, completed_at, updated_at`

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	Insert(ctx context.Context, ticket *domain.Ticket) error
	Update(ctx context.Context, ticket *domain.Ticket) error
	UpdateStateGuarded(ctx context.Context, ticket *domain.Ticket, expected domain.TicketState) error
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	GetByExternalKey(ctx context.Context, key string) (*domain.Ticket, error)
	ListByState(ctx context.Context, state domain.TicketState) ([]domain.Ticket, error)
	ListBySubmitter(ctx context.Context, submitterID string, limit, offset int) ([]domain.Ticket, error)
	ListByTechnician(ctx context.Context, technicianID string, limit, offset int) ([]domain.Ticket, error)
	ListByDateRange(ctx context.Context, from, to time.Time) ([]domain.Ticket, error)
}

type ticketRepository struct {
	db DB
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(db DB) TicketRepository {
	return &ticketRepository{db: db}
}

func (r *ticketRepository) Insert(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (external_key, submitter_id, kind, lifecycle_state, resolution_outcome,
            equipment, malfunction_description, software_name, need_description, parts_used)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
        RETURNING id, created_at, updated_at`
	return r.db.QueryRow(ctx, query,
		ticket.ExternalKey,
		ticket.SubmitterID,
		ticket.Kind,
		ticket.State,
		ticket.Outcome,
		ticket.Equipment,
		ticket.MalfunctionDescription,
		ticket.SoftwareName,
		ticket.NeedDescription,
		ticket.PartsUsed,
	).Scan(&ticket.ID, &ticket.CreatedAt, &ticket.UpdatedAt)
}

func (r *ticketRepository) Update(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        UPDATE tickets SET lifecycle_state=$1, resolution_outcome=$2, technician_id=$3,
            repair_description=$4, parts_used=$5, intervention_description=$6,
            attended_at=$7, completed_at=$8, updated_at=NOW()
        WHERE id=$9`
	cmd, err := r.db.Exec(ctx, query,
		ticket.State,
		ticket.Outcome,
		ticket.TechnicianID,
		ticket.RepairDescription,
		ticket.PartsUsed,
		ticket.InterventionDescription,
		ticket.AttendedAt,
		ticket.CompletedAt,
		ticket.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// UpdateStateGuarded writes the transition only while the stored state still
// matches expected. Zero rows affected means another caller won the race.
func (r *ticketRepository) UpdateStateGuarded(ctx context.Context, ticket *domain.Ticket, expected domain.TicketState) error {
	const query = `
        UPDATE tickets SET lifecycle_state=$1, resolution_outcome=$2, technician_id=$3,
            repair_description=$4, parts_used=$5, intervention_description=$6,
            attended_at=$7, completed_at=$8, updated_at=NOW()
        WHERE id=$9 AND lifecycle_state=$10`
	cmd, err := r.db.Exec(ctx, query,
		ticket.State,
		ticket.Outcome,
		ticket.TechnicianID,
		ticket.RepairDescription,
		ticket.PartsUsed,
		ticket.InterventionDescription,
		ticket.AttendedAt,
		ticket.CompletedAt,
		ticket.ID,
		expected,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	const query = `SELECT ` + ticketColumns + ` FROM tickets WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *ticketRepository) GetByExternalKey(ctx context.Context, key string) (*domain.Ticket, error) {
	const query = `SELECT ` + ticketColumns + ` FROM tickets WHERE external_key=$1`
	return r.fetchSingle(ctx, query, key)
}

func (r *ticketRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Ticket, error) {
	var ticket domain.Ticket
	if err := scanTicket(r.db.QueryRow(ctx, query, arg), &ticket); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *ticketRepository) ListByState(ctx context.Context, state domain.TicketState) ([]domain.Ticket, error) {
	const query = `SELECT ` + ticketColumns + `
        FROM tickets WHERE lifecycle_state=$1 ORDER BY created_at ASC, id ASC`
	rows, err := r.db.Query(ctx, query, state)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

func (r *ticketRepository) ListBySubmitter(ctx context.Context, submitterID string, limit, offset int) ([]domain.Ticket, error) {
	const query = `SELECT ` + ticketColumns + `
        FROM tickets WHERE submitter_id=$1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.db.Query(ctx, query, submitterID, normalizeLimit(limit), normalizeOffset(offset))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

func (r *ticketRepository) ListByTechnician(ctx context.Context, technicianID string, limit, offset int) ([]domain.Ticket, error) {
	const query = `SELECT ` + ticketColumns + `
        FROM tickets WHERE technician_id=$1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.db.Query(ctx, query, technicianID, normalizeLimit(limit), normalizeOffset(offset))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

func (r *ticketRepository) ListByDateRange(ctx context.Context, from, to time.Time) ([]domain.Ticket, error) {
	const query = `SELECT ` + ticketColumns + `
        FROM tickets WHERE created_at >= $1 AND created_at < $2 ORDER BY created_at ASC, id ASC`
	rows, err := r.db.Query(ctx, query, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return 20
	}
	return limit
}

func normalizeOffset(offset int) int {
	if offset < 0 {
		return 0
	}
	return offset
}

func scanTicket(row pgx.Row, ticket *domain.Ticket) error {
	return row.Scan(
		&ticket.ID,
		&ticket.ExternalKey,
		&ticket.SubmitterID,
		&ticket.Kind,
		&ticket.State,
		&ticket.Outcome,
		&ticket.TechnicianID,
		&ticket.Equipment,
		&ticket.MalfunctionDescription,
		&ticket.RepairDescription,
		&ticket.PartsUsed,
		&ticket.SoftwareName,
		&ticket.NeedDescription,
		&ticket.InterventionDescription,
		&ticket.CreatedAt,
		&ticket.AttendedAt,
		&ticket.CompletedAt,
		&ticket.UpdatedAt,
	)
}

func scanTickets(rows pgx.Rows) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for rows.Next() {
		var ticket domain.Ticket
		if err := scanTicket(rows, &ticket); err != nil {
			return nil, err
		}
		result = append(result, ticket)
	}
	return result, rows.Err()
}
