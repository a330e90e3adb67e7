package domain

import (
	"fmt"
	"time"
)

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusNew        TicketStatus = "new"
	TicketStatusOpen       TicketStatus = "open"
	TicketStatusInProgress TicketStatus = "in_progress"
	TicketStatusResolved   TicketStatus = "resolved"
	TicketStatusClosed     TicketStatus = "closed"
)

// Valid reports whether the value belongs to the closed status enumeration.
func (s TicketStatus) Valid() bool {
	switch s {
	case TicketStatusNew, TicketStatusOpen, TicketStatusInProgress, TicketStatusResolved, TicketStatusClosed:
		return true
	}
	return false
}

// TicketPriority enumerates urgency levels.
type TicketPriority string

const (
	TicketPriorityLow    TicketPriority = "low"
	TicketPriorityMedium TicketPriority = "medium"
	TicketPriorityHigh   TicketPriority = "high"
	TicketPriorityUrgent TicketPriority = "urgent"
)

// Valid reports whether the value belongs to the closed priority enumeration.
func (p TicketPriority) Valid() bool {
	switch p {
	case TicketPriorityLow, TicketPriorityMedium, TicketPriorityHigh, TicketPriorityUrgent:
		return true
	}
	return false
}

// TicketType enumerates the fixed inquiry categories.
type TicketType string

const (
	TicketTypeGeneralInquiry     TicketType = "General Inquiry"
	TicketTypeAwardProgression   TicketType = "Award Progression"
	TicketTypeCertificateRequest TicketType = "Certificate Request"
	TicketTypeRegistrationIssue  TicketType = "Registration Issue"
	TicketTypeComplaint          TicketType = "Complaint or Grievance"
	TicketTypeTechnicalSupport   TicketType = "Technical Support"
)

// Valid reports whether the value belongs to the closed type enumeration.
func (t TicketType) Valid() bool {
	switch t {
	case TicketTypeGeneralInquiry, TicketTypeAwardProgression, TicketTypeCertificateRequest,
		TicketTypeRegistrationIssue, TicketTypeComplaint, TicketTypeTechnicalSupport:
		return true
	}
	return false
}

// TicketDepartment enumerates the fixed handling departments.
type TicketDepartment string

const (
	DepartmentAdmin             TicketDepartment = "Admin"
	DepartmentICT               TicketDepartment = "ICT"
	DepartmentFinance           TicketDepartment = "Finance"
	DepartmentProgramManagement TicketDepartment = "Program Management"
	DepartmentCustomerService   TicketDepartment = "Customer Service"
)

// Valid reports whether the value belongs to the closed department enumeration.
func (d TicketDepartment) Valid() bool {
	switch d {
	case DepartmentAdmin, DepartmentICT, DepartmentFinance, DepartmentProgramManagement, DepartmentCustomerService:
		return true
	}
	return false
}

// Ticket is the aggregate for support requests. RequesterID and
// AssigneeID are nullable: removing the referenced user clears the
// reference rather than deleting the ticket.
type Ticket struct {
	ID          int64
	RequesterID *int64
	AssigneeID  *int64
	Subject     string
	Description string
	Type        TicketType
	Department  TicketDepartment
	Priority    TicketPriority
	Status      TicketStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Key returns the human-readable display identifier for the ticket.
// It is derived from the numeric id and never stored, so it is unique
// and stable for the ticket's lifetime.
func (t *Ticket) Key() string {
	return TicketKey(t.ID)
}

// TicketKey formats a numeric ticket id as "#" plus the id zero-padded
// to six digits, e.g. 42 -> "#000042".
func TicketKey(id int64) string {
	return fmt.Sprintf("#%06d", id)
}

// TicketAuditEntry records one change applied to a ticket. Value holds
// the new value; nil means the field was cleared.
type TicketAuditEntry struct {
	ID        int64     `json:"id"`
	TicketID  int64     `json:"ticketId"`
	Field     string    `json:"field"`
	Value     *string   `json:"value"`
	CreatedAt time.Time `json:"createdAt"`
}

// TicketStats aggregates ticket counts by lifecycle bucket. Pending
// covers status new, Open covers open and in_progress, Closed covers
// resolved and closed.
type TicketStats struct {
	Total   int64 `json:"total"`
	Pending int64 `json:"pending"`
	Open    int64 `json:"open"`
	Closed  int64 `json:"closed"`
}
