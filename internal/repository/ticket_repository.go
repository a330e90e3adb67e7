package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/award-support/crm-service/internal/domain"
	apperrors "github.com/award-support/crm-service/pkg/errorutil"
)

// Pagination bounds for list queries.
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// TicketQuery captures the optional list filters plus pagination.
// Omitted filters impose no constraint; supplied filters are
// AND-combined.
type TicketQuery struct {
	Status     *domain.TicketStatus
	Priority   *domain.TicketPriority
	Department *domain.TicketDepartment
	Search     *string
	Page       int
	Limit      int
}

// Normalize applies pagination defaults for unset values.
func (q *TicketQuery) Normalize() {
	if q.Page == 0 {
		q.Page = 1
	}
	if q.Limit == 0 {
		q.Limit = DefaultPageSize
	}
}

// Validate rejects out-of-range pagination before any query runs.
func (q TicketQuery) Validate() error {
	if q.Page < 1 {
		return apperrors.NewValidationError("page must be >= 1", map[string]any{"page": q.Page})
	}
	if q.Limit <= 0 || q.Limit > MaxPageSize {
		return apperrors.NewValidationError(
			fmt.Sprintf("limit must be between 1 and %d", MaxPageSize),
			map[string]any{"limit": q.Limit})
	}
	return nil
}

// Offset returns the row offset implied by page and limit.
func (q TicketQuery) Offset() int {
	return (q.Page - 1) * q.Limit
}

// whereClause composes the AND-combined filter predicate with numbered
// placeholders. Filter values are always bound as arguments, never
// concatenated into the query text.
func (q TicketQuery) whereClause() (string, []any) {
	clauses := []string{"1=1"}
	args := []any{}

	if q.Status != nil {
		args = append(args, *q.Status)
		clauses = append(clauses, fmt.Sprintf("t.status=$%d", len(args)))
	}
	if q.Priority != nil {
		args = append(args, *q.Priority)
		clauses = append(clauses, fmt.Sprintf("t.priority=$%d", len(args)))
	}
	if q.Department != nil {
		args = append(args, *q.Department)
		clauses = append(clauses, fmt.Sprintf("t.department=$%d", len(args)))
	}
	if q.Search != nil && strings.TrimSpace(*q.Search) != "" {
		search := "%" + strings.ToLower(strings.TrimSpace(*q.Search)) + "%"
		args = append(args, search)
		placeholder := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf("(LOWER(t.subject) LIKE %s OR LOWER(t.description) LIKE %s)", placeholder, placeholder))
	}

	return strings.Join(clauses, " AND "), args
}

// TicketPatch describes a partial update. Nil fields retain their
// prior value. AssignedToSet distinguishes "leave assignee alone" from
// "set assignee to NULL".
type TicketPatch struct {
	Status        *domain.TicketStatus
	Priority      *domain.TicketPriority
	AssignedTo    *int64
	AssignedToSet bool
}

// Empty reports whether the patch carries no recognized field.
func (p TicketPatch) Empty() bool {
	return p.Status == nil && p.Priority == nil && !p.AssignedToSet
}

// TicketRow is a ticket joined with requester and assignee display
// fields for list and detail views.
type TicketRow struct {
	domain.Ticket
	RequesterName  *string
	RequesterEmail *string
	AssigneeName   *string
}

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id int64) (*TicketRow, error)
	List(ctx context.Context, query TicketQuery) ([]TicketRow, int64, error)
	Update(ctx context.Context, id int64, patch TicketPatch) error
	Stats(ctx context.Context) (*domain.TicketStats, error)
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates the Postgres-backed repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (user_id, assigned_to, subject, description, type, department, priority, status)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		ticket.RequesterID,
		ticket.AssigneeID,
		ticket.Subject,
		ticket.Description,
		ticket.Type,
		ticket.Department,
		ticket.Priority,
		ticket.Status,
	).Scan(&ticket.ID, &ticket.CreatedAt, &ticket.UpdatedAt)
}

const ticketRowColumns = `
        t.id, t.user_id, t.assigned_to, t.subject, t.description, t.type, t.department,
        t.priority, t.status, t.created_at, t.updated_at,
        u.first_name || ' ' || u.last_name AS requester_name,
        u.email AS requester_email,
        a.first_name || ' ' || a.last_name AS assignee_name`

const ticketRowJoins = `
        FROM tickets t
        LEFT JOIN users u ON t.user_id = u.id
        LEFT JOIN users a ON t.assigned_to = a.id`

func (r *ticketRepository) GetByID(ctx context.Context, id int64) (*TicketRow, error) {
	query := `SELECT` + ticketRowColumns + ticketRowJoins + ` WHERE t.id=$1`
	row := r.pool.QueryRow(ctx, query, id)
	ticket, err := scanTicketRow(row)
	if err != nil {
		return nil, err
	}
	return ticket, nil
}

func (r *ticketRepository) List(ctx context.Context, query TicketQuery) ([]TicketRow, int64, error) {
	where, args := query.whereClause()

	// Ordering ties on created_at break by id so pagination stays
	// deterministic between requests.
	listQuery := fmt.Sprintf(`SELECT%s%s WHERE %s ORDER BY t.created_at DESC, t.id DESC LIMIT %d OFFSET %d`,
		ticketRowColumns, ticketRowJoins, where, query.Limit, query.Offset())

	rows, err := r.pool.Query(ctx, listQuery, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var result []TicketRow
	for rows.Next() {
		ticket, err := scanTicketRow(rows)
		if err != nil {
			return nil, 0, err
		}
		result = append(result, *ticket)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM tickets t WHERE %s`, where)
	var total int64
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	return result, total, nil
}

func (r *ticketRepository) Update(ctx context.Context, id int64, patch TicketPatch) error {
	sets := []string{}
	args := []any{}

	if patch.Status != nil {
		args = append(args, *patch.Status)
		sets = append(sets, fmt.Sprintf("status=$%d", len(args)))
	}
	if patch.Priority != nil {
		args = append(args, *patch.Priority)
		sets = append(sets, fmt.Sprintf("priority=$%d", len(args)))
	}
	if patch.AssignedToSet {
		args = append(args, patch.AssignedTo)
		sets = append(sets, fmt.Sprintf("assigned_to=$%d", len(args)))
	}
	if len(sets) == 0 {
		return apperrors.NewValidationError("no valid fields to update", nil)
	}

	args = append(args, id)
	query := fmt.Sprintf(`UPDATE tickets SET %s, updated_at=NOW() WHERE id=$%d`,
		strings.Join(sets, ", "), len(args))

	cmd, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// Stats aggregates the lifecycle buckets in a single statement so the
// counts always reflect one snapshot.
func (r *ticketRepository) Stats(ctx context.Context) (*domain.TicketStats, error) {
	const query = `
        SELECT COUNT(*) AS total,
               COUNT(*) FILTER (WHERE status = 'new') AS pending,
               COUNT(*) FILTER (WHERE status IN ('open','in_progress')) AS open,
               COUNT(*) FILTER (WHERE status IN ('resolved','closed')) AS closed
        FROM tickets`
	var stats domain.TicketStats
	if err := r.pool.QueryRow(ctx, query).Scan(&stats.Total, &stats.Pending, &stats.Open, &stats.Closed); err != nil {
		return nil, err
	}
	return &stats, nil
}

func scanTicketRow(row pgx.Row) (*TicketRow, error) {
	var ticket TicketRow
	if err := row.Scan(
		&ticket.ID,
		&ticket.RequesterID,
		&ticket.AssigneeID,
		&ticket.Subject,
		&ticket.Description,
		&ticket.Type,
		&ticket.Department,
		&ticket.Priority,
		&ticket.Status,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
		&ticket.RequesterName,
		&ticket.RequesterEmail,
		&ticket.AssigneeName,
	); err != nil {
		return nil, err
	}
	return &ticket, nil
}
