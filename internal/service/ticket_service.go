package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/award-support/crm-service/internal/domain"
	"github.com/award-support/crm-service/internal/events"
	"github.com/award-support/crm-service/internal/repository"
	apperrors "github.com/award-support/crm-service/pkg/errorutil"
)

// TicketService enforces the ticket lifecycle rules: required fields
// and closed enumerations on create, forced initial status, partial
// updates, and the paginated list contract.
type TicketService struct {
	tickets    repository.TicketRepository
	users      repository.UserRepository
	audit      repository.TicketAuditRepository
	dispatcher events.Dispatcher
}

// TicketDependencies bundles repositories for the ticket service.
// AuditRepo is optional; without it History serves empty trails.
type TicketDependencies struct {
	TicketRepo repository.TicketRepository
	UserRepo   repository.UserRepository
	AuditRepo  repository.TicketAuditRepository
	Dispatcher events.Dispatcher
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	return &TicketService{
		tickets:    deps.TicketRepo,
		users:      deps.UserRepo,
		audit:      deps.AuditRepo,
		dispatcher: deps.Dispatcher,
	}
}

// CreateTicketInput describes a ticket creation request, including the
// requester identity used for email lookup.
type CreateTicketInput struct {
	FirstName   string
	LastName    string
	Email       string
	Subject     string
	Description string
	Type        domain.TicketType
	Department  domain.TicketDepartment
	Priority    domain.TicketPriority
}

// UpdateTicketInput describes a partial ticket update. Nil fields keep
// their prior value; AssignedToSet with a nil AssignedTo unassigns.
type UpdateTicketInput struct {
	Status        *domain.TicketStatus
	Priority      *domain.TicketPriority
	AssignedTo    *int64
	AssignedToSet bool
}

// CreateTicket validates the request, resolves or implicitly creates
// the requester, and persists a new ticket with status forced to new.
func (s *TicketService) CreateTicket(ctx context.Context, input CreateTicketInput) (*domain.Ticket, error) {
	input.FirstName = strings.TrimSpace(input.FirstName)
	input.LastName = strings.TrimSpace(input.LastName)
	input.Email = strings.TrimSpace(strings.ToLower(input.Email))
	input.Subject = strings.TrimSpace(input.Subject)
	input.Description = strings.TrimSpace(input.Description)

	missing := []string{}
	if input.FirstName == "" {
		missing = append(missing, "first_name")
	}
	if input.LastName == "" {
		missing = append(missing, "last_name")
	}
	if input.Email == "" {
		missing = append(missing, "email")
	}
	if input.Subject == "" {
		missing = append(missing, "subject")
	}
	if input.Description == "" {
		missing = append(missing, "description")
	}
	if input.Type == "" {
		missing = append(missing, "type")
	}
	if input.Department == "" {
		missing = append(missing, "department")
	}
	if len(missing) > 0 {
		return nil, apperrors.NewValidationError("all required fields must be provided", map[string]any{"missing": missing})
	}

	if !input.Type.Valid() {
		return nil, apperrors.NewValidationError("unknown ticket type", map[string]any{"type": input.Type})
	}
	if !input.Department.Valid() {
		return nil, apperrors.NewValidationError("unknown department", map[string]any{"department": input.Department})
	}
	if input.Priority == "" {
		input.Priority = domain.TicketPriorityMedium
	}
	if !input.Priority.Valid() {
		return nil, apperrors.NewValidationError("unknown priority", map[string]any{"priority": input.Priority})
	}

	requester, err := s.resolveRequester(ctx, input)
	if err != nil {
		return nil, err
	}

	ticket := &domain.Ticket{
		RequesterID: &requester.ID,
		Subject:     input.Subject,
		Description: input.Description,
		Type:        input.Type,
		Department:  input.Department,
		Priority:    input.Priority,
		// Status is forced regardless of anything the caller supplied.
		Status: domain.TicketStatusNew,
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publish(ctx, events.Event{
		Type: events.EventTicketCreated,
		Payload: events.TicketCreatedPayload{
			TicketID:   ticket.ID,
			TicketKey:  ticket.Key(),
			Department: ticket.Department,
			Type:       ticket.Type,
			Priority:   ticket.Priority,
			Subject:    ticket.Subject,
		},
	})
	return ticket, nil
}

// resolveRequester looks up the requester by email, creating a
// login-incapable placeholder account on first contact.
func (s *TicketService) resolveRequester(ctx context.Context, input CreateTicketInput) (*domain.User, error) {
	user, err := s.users.GetByEmail(ctx, input.Email)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.MapError(err)
	}

	user = &domain.User{
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Email:        input.Email,
		PasswordHash: "",
		Role:         domain.RoleUser,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.publish(ctx, events.Event{
		Type: events.EventUserCreated,
		Payload: events.UserCreatedPayload{
			UserID:   user.ID,
			Email:    user.Email,
			Role:     user.Role,
			Implicit: true,
		},
	})
	return user, nil
}

// GetTicket fetches one ticket with requester/assignee display fields.
func (s *TicketService) GetTicket(ctx context.Context, id int64) (*repository.TicketRow, error) {
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"id": id})
		}
		return nil, apperrors.MapError(err)
	}
	return ticket, nil
}

// ListTickets returns one page of matching tickets plus the total
// count ignoring pagination.
func (s *TicketService) ListTickets(ctx context.Context, query repository.TicketQuery) ([]repository.TicketRow, int64, error) {
	query.Normalize()
	if err := query.Validate(); err != nil {
		return nil, 0, err
	}
	tickets, total, err := s.tickets.List(ctx, query)
	if err != nil {
		return nil, 0, apperrors.MapError(err)
	}
	return tickets, total, nil
}

// UpdateTicket applies a partial update. Only supplied fields change;
// the updated timestamp always refreshes. Any status may move to any
// other status.
func (s *TicketService) UpdateTicket(ctx context.Context, id int64, input UpdateTicketInput) error {
	patch := repository.TicketPatch{
		Status:        input.Status,
		Priority:      input.Priority,
		AssignedTo:    input.AssignedTo,
		AssignedToSet: input.AssignedToSet,
	}
	if patch.Empty() {
		return apperrors.NewValidationError("no valid fields to update", nil)
	}
	if patch.Status != nil && !patch.Status.Valid() {
		return apperrors.NewValidationError("unknown status", map[string]any{"status": *patch.Status})
	}
	if patch.Priority != nil && !patch.Priority.Valid() {
		return apperrors.NewValidationError("unknown priority", map[string]any{"priority": *patch.Priority})
	}
	if patch.AssignedToSet && patch.AssignedTo != nil {
		if _, err := s.users.GetByID(ctx, *patch.AssignedTo); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.NewNotFound("user", map[string]any{"id": *patch.AssignedTo})
			}
			return apperrors.MapError(err)
		}
	}

	if err := s.tickets.Update(ctx, id, patch); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("ticket", map[string]any{"id": id})
		}
		return apperrors.MapError(err)
	}

	s.publish(ctx, events.Event{
		Type: events.EventTicketUpdated,
		Payload: events.TicketUpdatedPayload{
			TicketID:      id,
			Status:        input.Status,
			Priority:      input.Priority,
			AssignedTo:    input.AssignedTo,
			AssignedToSet: input.AssignedToSet,
		},
	})
	return nil
}

// History returns the change trail for one ticket, oldest first.
func (s *TicketService) History(ctx context.Context, id int64) ([]domain.TicketAuditEntry, error) {
	if _, err := s.GetTicket(ctx, id); err != nil {
		return nil, err
	}
	if s.audit == nil {
		return []domain.TicketAuditEntry{}, nil
	}
	entries, err := s.audit.ListByTicket(ctx, id)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if entries == nil {
		entries = []domain.TicketAuditEntry{}
	}
	return entries, nil
}

// Stats returns the lifecycle bucket counts from a single snapshot.
func (s *TicketService) Stats(ctx context.Context) (*domain.TicketStats, error) {
	stats, err := s.tickets.Stats(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return stats, nil
}

func (s *TicketService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}
