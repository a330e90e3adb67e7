package dto

import (
	"encoding/json"
	"time"

	"github.com/award-support/crm-service/internal/domain"
)

// CreateTicketRequest payload. The name/email fields identify the
// requester; the account is created on first contact if unknown.
type CreateTicketRequest struct {
	FirstName   string                  `json:"firstName"`
	LastName    string                  `json:"lastName"`
	Email       string                  `json:"email"`
	Subject     string                  `json:"subject"`
	Description string                  `json:"description"`
	Type        domain.TicketType       `json:"type"`
	Department  domain.TicketDepartment `json:"department"`
	Priority    domain.TicketPriority   `json:"priority"`
}

// OptionalID distinguishes an absent JSON field from an explicit null.
// Present with a nil Value means "clear the reference".
type OptionalID struct {
	Present bool
	Value   *int64
}

// UnmarshalJSON records presence and accepts either a number or null.
func (o *OptionalID) UnmarshalJSON(data []byte) error {
	o.Present = true
	if string(data) == "null" {
		o.Value = nil
		return nil
	}
	var id int64
	if err := json.Unmarshal(data, &id); err != nil {
		return err
	}
	o.Value = &id
	return nil
}

// UpdateTicketRequest payload for partial updates.
type UpdateTicketRequest struct {
	Status     *domain.TicketStatus   `json:"status"`
	Priority   *domain.TicketPriority `json:"priority"`
	AssignedTo OptionalID             `json:"assigned_to"`
}

// TicketResponse is the ticket shape shared by list and detail views.
type TicketResponse struct {
	ID             int64                   `json:"id"`
	Key            string                  `json:"key"`
	Subject        string                  `json:"subject"`
	Description    string                  `json:"description"`
	Type           domain.TicketType       `json:"type"`
	Department     domain.TicketDepartment `json:"department"`
	Priority       domain.TicketPriority   `json:"priority"`
	Status         domain.TicketStatus     `json:"status"`
	CustomerID     *int64                  `json:"customerId,omitempty"`
	CustomerName   *string                 `json:"customerName,omitempty"`
	CustomerEmail  *string                 `json:"customerEmail,omitempty"`
	AssignedTo     *int64                  `json:"assignedTo,omitempty"`
	AssignedToName *string                 `json:"assignedToName,omitempty"`
	CreatedAt      time.Time               `json:"createdAt"`
	UpdatedAt      time.Time               `json:"updatedAt"`
}

// TicketListResponse wraps one page of tickets with the total count
// ignoring pagination.
type TicketListResponse struct {
	Tickets []TicketResponse `json:"tickets"`
	Total   int64            `json:"total"`
	Page    int              `json:"page"`
	Limit   int              `json:"limit"`
}

// CreateTicketResponse confirms creation with the derived key.
type CreateTicketResponse struct {
	Message   string         `json:"message"`
	TicketID  int64          `json:"ticketId"`
	TicketKey string         `json:"ticketKey"`
	Ticket    TicketResponse `json:"ticket"`
}
