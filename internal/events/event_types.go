package events

import (
	"time"

	"github.com/award-support/crm-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated EventType = "ticket_created"
	EventTicketUpdated EventType = "ticket_updated"
	EventUserCreated   EventType = "user_created"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	TicketID   int64                   `json:"ticket_id"`
	TicketKey  string                  `json:"ticket_key"`
	Department domain.TicketDepartment `json:"department"`
	Type       domain.TicketType       `json:"type"`
	Priority   domain.TicketPriority   `json:"priority"`
	Subject    string                  `json:"subject"`
}

// TicketUpdatedPayload payload. AssignedToSet with a nil AssignedTo
// means the ticket was unassigned.
type TicketUpdatedPayload struct {
	TicketID      int64                  `json:"ticket_id"`
	Status        *domain.TicketStatus   `json:"status,omitempty"`
	Priority      *domain.TicketPriority `json:"priority,omitempty"`
	AssignedTo    *int64                 `json:"assigned_to,omitempty"`
	AssignedToSet bool                   `json:"assigned_to_set,omitempty"`
}

// UserCreatedPayload payload.
type UserCreatedPayload struct {
	UserID   int64           `json:"user_id"`
	Email    string          `json:"email"`
	Role     domain.UserRole `json:"role"`
	Implicit bool            `json:"implicit"`
}
