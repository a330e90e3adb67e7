package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/award-support/crm-service/internal/domain"
	"github.com/award-support/crm-service/internal/events"
	"github.com/award-support/crm-service/internal/repository"
)

// fakeTicketRepo keeps tickets in memory and mirrors the store
// contract: filters AND-combine, lists order newest first with id as
// the tie-break, and updates on unknown ids surface pgx.ErrNoRows.
type fakeTicketRepo struct {
	mu      sync.Mutex
	nextID  int64
	tickets map[int64]*domain.Ticket
	users   *fakeUserRepo
}

func newFakeTicketRepo(users *fakeUserRepo) *fakeTicketRepo {
	return &fakeTicketRepo{nextID: 1, tickets: map[int64]*domain.Ticket{}, users: users}
}

func (r *fakeTicketRepo) Create(_ context.Context, ticket *domain.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	ticket.ID = r.nextID
	r.nextID++
	now := time.Now()
	ticket.CreatedAt = now
	ticket.UpdatedAt = now
	copied := *ticket
	r.tickets[ticket.ID] = &copied
	return nil
}

func (r *fakeTicketRepo) GetByID(_ context.Context, id int64) (*repository.TicketRow, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ticket, ok := r.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return r.toRow(ticket), nil
}

func (r *fakeTicketRepo) List(_ context.Context, query repository.TicketQuery) ([]repository.TicketRow, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var matched []*domain.Ticket
	for _, ticket := range r.tickets {
		if query.Status != nil && ticket.Status != *query.Status {
			continue
		}
		if query.Priority != nil && ticket.Priority != *query.Priority {
			continue
		}
		if query.Department != nil && ticket.Department != *query.Department {
			continue
		}
		if query.Search != nil {
			needle := strings.ToLower(strings.TrimSpace(*query.Search))
			if needle != "" &&
				!strings.Contains(strings.ToLower(ticket.Subject), needle) &&
				!strings.Contains(strings.ToLower(ticket.Description), needle) {
				continue
			}
		}
		matched = append(matched, ticket)
	}
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID > matched[j].ID
	})

	total := int64(len(matched))
	start := query.Offset()
	if start > len(matched) {
		start = len(matched)
	}
	end := start + query.Limit
	if end > len(matched) {
		end = len(matched)
	}

	rows := make([]repository.TicketRow, 0, end-start)
	for _, ticket := range matched[start:end] {
		rows = append(rows, *r.toRow(ticket))
	}
	return rows, total, nil
}

func (r *fakeTicketRepo) Update(_ context.Context, id int64, patch repository.TicketPatch) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	ticket, ok := r.tickets[id]
	if !ok {
		return pgx.ErrNoRows
	}
	if patch.Status != nil {
		ticket.Status = *patch.Status
	}
	if patch.Priority != nil {
		ticket.Priority = *patch.Priority
	}
	if patch.AssignedToSet {
		ticket.AssigneeID = patch.AssignedTo
	}
	ticket.UpdatedAt = time.Now()
	return nil
}

func (r *fakeTicketRepo) Stats(_ context.Context) (*domain.TicketStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stats := &domain.TicketStats{}
	for _, ticket := range r.tickets {
		stats.Total++
		switch ticket.Status {
		case domain.TicketStatusNew:
			stats.Pending++
		case domain.TicketStatusOpen, domain.TicketStatusInProgress:
			stats.Open++
		case domain.TicketStatusResolved, domain.TicketStatusClosed:
			stats.Closed++
		}
	}
	return stats, nil
}

func (r *fakeTicketRepo) toRow(ticket *domain.Ticket) *repository.TicketRow {
	row := repository.TicketRow{Ticket: *ticket}
	if r.users == nil {
		return &row
	}
	if ticket.RequesterID != nil {
		if user, ok := r.users.byID[*ticket.RequesterID]; ok {
			name := user.FullName()
			row.RequesterName = &name
			row.RequesterEmail = &user.Email
		}
	}
	if ticket.AssigneeID != nil {
		if user, ok := r.users.byID[*ticket.AssigneeID]; ok {
			name := user.FullName()
			row.AssigneeName = &name
		}
	}
	return &row
}

type fakeUserRepo struct {
	mu      sync.Mutex
	nextID  int64
	byID    map[int64]*domain.User
	byEmail map[string]*domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{nextID: 1, byID: map[int64]*domain.User{}, byEmail: map[string]*domain.User{}}
}

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user.ID = r.nextID
	r.nextID++
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	copied := *user
	r.byID[user.ID] = &copied
	r.byEmail[user.Email] = &copied
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id int64) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *user
	return &copied, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.byEmail[email]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *user
	return &copied, nil
}

func (r *fakeUserRepo) List(_ context.Context) ([]domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.User
	for _, user := range r.byID {
		result = append(result, *user)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

type fakeAuditRepo struct {
	mu      sync.Mutex
	nextID  int64
	entries []domain.TicketAuditEntry
}

func (r *fakeAuditRepo) Record(_ context.Context, entry *domain.TicketAuditEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	entry.ID = r.nextID
	entry.CreatedAt = time.Now()
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *fakeAuditRepo) ListByTicket(_ context.Context, ticketID int64) ([]domain.TicketAuditEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.TicketAuditEntry
	for _, entry := range r.entries {
		if entry.TicketID == ticketID {
			result = append(result, entry)
		}
	}
	return result, nil
}

// recordingDispatcher captures published events for assertions.
type recordingDispatcher struct {
	mu     sync.Mutex
	events []events.Event
}

func (d *recordingDispatcher) Publish(_ context.Context, event events.Event) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, event)
	return nil
}

func (d *recordingDispatcher) Subscribe(events.EventType, events.EventHandler) {}

func (d *recordingDispatcher) published() []events.Event {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]events.Event(nil), d.events...)
}
