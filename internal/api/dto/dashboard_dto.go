package dto

import "github.com/award-support/crm-service/internal/domain"

// DepartmentCountResponse entry for the department chart.
type DepartmentCountResponse struct {
	Department domain.TicketDepartment `json:"department"`
	Count      int64                   `json:"count"`
}

// TypeCountResponse entry for the type chart.
type TypeCountResponse struct {
	Type  domain.TicketType `json:"type"`
	Count int64             `json:"count"`
}

// CreatorCountResponse entry for the top-creators ranking.
type CreatorCountResponse struct {
	Name           string `json:"creator"`
	Email          string `json:"email"`
	TicketsCreated int64  `json:"ticketsCreated"`
}

// DashboardMetricsResponse is the dashboard aggregation payload.
type DashboardMetricsResponse struct {
	NewTickets        int64                     `json:"newTickets"`
	OpenTickets       int64                     `json:"openTickets"`
	ClosedTickets     int64                     `json:"closedTickets"`
	UnassignedTickets int64                     `json:"unassignedTickets"`
	TicketByDept      []DepartmentCountResponse `json:"ticketByDept"`
	TicketByType      []TypeCountResponse       `json:"ticketByType"`
	TopCreators       []CreatorCountResponse    `json:"topCreators"`
}
