package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/award-support/crm-service/internal/domain"
)

// TicketAuditRepository stores the change trail behind each ticket.
type TicketAuditRepository interface {
	Record(ctx context.Context, entry *domain.TicketAuditEntry) error
	ListByTicket(ctx context.Context, ticketID int64) ([]domain.TicketAuditEntry, error)
}

type ticketAuditRepository struct {
	pool *pgxpool.Pool
}

// NewTicketAuditRepository builds the repository.
func NewTicketAuditRepository(pool *pgxpool.Pool) TicketAuditRepository {
	return &ticketAuditRepository{pool: pool}
}

func (r *ticketAuditRepository) Record(ctx context.Context, entry *domain.TicketAuditEntry) error {
	const query = `
        INSERT INTO ticket_audit (ticket_id, field, value)
        VALUES ($1,$2,$3)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		entry.TicketID,
		entry.Field,
		entry.Value,
	).Scan(&entry.ID, &entry.CreatedAt)
}

func (r *ticketAuditRepository) ListByTicket(ctx context.Context, ticketID int64) ([]domain.TicketAuditEntry, error) {
	const query = `
        SELECT id, ticket_id, field, value, created_at
        FROM ticket_audit WHERE ticket_id=$1 ORDER BY created_at ASC, id ASC`
	rows, err := r.pool.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.TicketAuditEntry
	for rows.Next() {
		var entry domain.TicketAuditEntry
		if err := rows.Scan(
			&entry.ID,
			&entry.TicketID,
			&entry.Field,
			&entry.Value,
			&entry.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}
