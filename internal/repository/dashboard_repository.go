package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/award-support/crm-service/internal/domain"
)

// DepartmentCount pairs a department with its ticket count.
type DepartmentCount struct {
	Department domain.TicketDepartment
	Count      int64
}

// TypeCount pairs an inquiry type with its ticket count.
type TypeCount struct {
	Type  domain.TicketType
	Count int64
}

// CreatorCount ranks a requester by tickets filed.
type CreatorCount struct {
	Name  string
	Email string
	Count int64
}

// DashboardMetrics aggregates the figures behind the dashboard view.
type DashboardMetrics struct {
	NewToday      int64
	OpenTickets   int64
	ClosedTickets int64
	Unassigned    int64
	ByDepartment  []DepartmentCount
	ByType        []TypeCount
	TopCreators   []CreatorCount
}

// DashboardRepository reads aggregate figures for the dashboard.
type DashboardRepository interface {
	Metrics(ctx context.Context) (*DashboardMetrics, error)
}

type dashboardRepository struct {
	pool *pgxpool.Pool
}

// NewDashboardRepository builds the repository.
func NewDashboardRepository(pool *pgxpool.Pool) DashboardRepository {
	return &dashboardRepository{pool: pool}
}

func (r *dashboardRepository) Metrics(ctx context.Context) (*DashboardMetrics, error) {
	metrics := &DashboardMetrics{}

	const countsQuery = `
        SELECT COUNT(*) FILTER (WHERE created_at >= date_trunc('day', NOW())) AS new_today,
               COUNT(*) FILTER (WHERE status IN ('open','in_progress')) AS open,
               COUNT(*) FILTER (WHERE status IN ('resolved','closed')) AS closed,
               COUNT(*) FILTER (WHERE assigned_to IS NULL) AS unassigned
        FROM tickets`
	if err := r.pool.QueryRow(ctx, countsQuery).Scan(
		&metrics.NewToday,
		&metrics.OpenTickets,
		&metrics.ClosedTickets,
		&metrics.Unassigned,
	); err != nil {
		return nil, err
	}

	const byDeptQuery = `
        SELECT department, COUNT(*) FROM tickets GROUP BY department ORDER BY COUNT(*) DESC`
	deptRows, err := r.pool.Query(ctx, byDeptQuery)
	if err != nil {
		return nil, err
	}
	defer deptRows.Close()
	for deptRows.Next() {
		var entry DepartmentCount
		if err := deptRows.Scan(&entry.Department, &entry.Count); err != nil {
			return nil, err
		}
		metrics.ByDepartment = append(metrics.ByDepartment, entry)
	}
	if err := deptRows.Err(); err != nil {
		return nil, err
	}

	const byTypeQuery = `
        SELECT type, COUNT(*) FROM tickets GROUP BY type ORDER BY COUNT(*) DESC`
	typeRows, err := r.pool.Query(ctx, byTypeQuery)
	if err != nil {
		return nil, err
	}
	defer typeRows.Close()
	for typeRows.Next() {
		var entry TypeCount
		if err := typeRows.Scan(&entry.Type, &entry.Count); err != nil {
			return nil, err
		}
		metrics.ByType = append(metrics.ByType, entry)
	}
	if err := typeRows.Err(); err != nil {
		return nil, err
	}

	const topCreatorsQuery = `
        SELECT u.first_name || ' ' || u.last_name, u.email, COUNT(*) AS tickets_created
        FROM tickets t
        JOIN users u ON t.user_id = u.id
        GROUP BY u.id, u.first_name, u.last_name, u.email
        ORDER BY tickets_created DESC
        LIMIT 5`
	creatorRows, err := r.pool.Query(ctx, topCreatorsQuery)
	if err != nil {
		return nil, err
	}
	defer creatorRows.Close()
	for creatorRows.Next() {
		var entry CreatorCount
		if err := creatorRows.Scan(&entry.Name, &entry.Email, &entry.Count); err != nil {
			return nil, err
		}
		metrics.TopCreators = append(metrics.TopCreators, entry)
	}
	return metrics, creatorRows.Err()
}
