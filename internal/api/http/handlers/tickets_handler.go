package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/award-support/crm-service/internal/api/dto"
	"github.com/award-support/crm-service/internal/domain"
	"github.com/award-support/crm-service/internal/repository"
	"github.com/award-support/crm-service/internal/service"
	apperrors "github.com/award-support/crm-service/pkg/errorutil"
)

// TicketsHandler manages ticket endpoints.
type TicketsHandler struct {
	service *service.TicketService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService) *TicketsHandler {
	return &TicketsHandler{service: ticketService}
}

// CreateTicket POST /api/tickets. Public: the requester identifies
// themselves in the payload.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	ticket, err := h.service.CreateTicket(c.UserContext(), service.CreateTicketInput{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Email:       req.Email,
		Subject:     req.Subject,
		Description: req.Description,
		Type:        req.Type,
		Department:  req.Department,
		Priority:    req.Priority,
	})
	if err != nil {
		return err
	}

	return c.Status(http.StatusCreated).JSON(dto.CreateTicketResponse{
		Message:   "ticket created successfully",
		TicketID:  ticket.ID,
		TicketKey: ticket.Key(),
		Ticket:    ticketResponse(&repository.TicketRow{Ticket: *ticket}),
	})
}

// ListTickets GET /api/tickets.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	query, err := parseTicketQuery(c)
	if err != nil {
		return err
	}

	tickets, total, err := h.service.ListTickets(c.UserContext(), query)
	if err != nil {
		return err
	}

	items := make([]dto.TicketResponse, 0, len(tickets))
	for i := range tickets {
		items = append(items, ticketResponse(&tickets[i]))
	}
	return c.JSON(dto.TicketListResponse{
		Tickets: items,
		Total:   total,
		Page:    query.Page,
		Limit:   query.Limit,
	})
}

// GetTicket GET /api/tickets/:id.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	id, err := parseTicketID(c)
	if err != nil {
		return err
	}
	ticket, err := h.service.GetTicket(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(ticketResponse(ticket))
}

// UpdateTicket PUT /api/tickets/:id.
func (h *TicketsHandler) UpdateTicket(c *fiber.Ctx) error {
	id, err := parseTicketID(c)
	if err != nil {
		return err
	}

	var req dto.UpdateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	if err := h.service.UpdateTicket(c.UserContext(), id, service.UpdateTicketInput{
		Status:        req.Status,
		Priority:      req.Priority,
		AssignedTo:    req.AssignedTo.Value,
		AssignedToSet: req.AssignedTo.Present,
	}); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "ticket updated successfully"})
}

// History GET /api/tickets/:id/history.
func (h *TicketsHandler) History(c *fiber.Ctx) error {
	id, err := parseTicketID(c)
	if err != nil {
		return err
	}
	entries, err := h.service.History(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"history": entries})
}

// Stats GET /api/tickets/stats.
func (h *TicketsHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.service.Stats(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(stats)
}

func parseTicketID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewValidationError("invalid ticket id", map[string]any{"id": c.Params("id")})
	}
	return id, nil
}

func parseTicketQuery(c *fiber.Ctx) (repository.TicketQuery, error) {
	query := repository.TicketQuery{}

	if status := c.Query("status"); status != "" {
		val := domain.TicketStatus(status)
		query.Status = &val
	}
	if priority := c.Query("priority"); priority != "" {
		val := domain.TicketPriority(priority)
		query.Priority = &val
	}
	if department := c.Query("department"); department != "" {
		val := domain.TicketDepartment(department)
		query.Department = &val
	}
	if search := strings.TrimSpace(c.Query("search")); search != "" {
		query.Search = &search
	}

	page, err := parseQueryInt(c, "page")
	if err != nil {
		return query, err
	}
	if page != nil {
		// A supplied page must be valid; only an absent one defaults.
		if *page < 1 {
			return query, apperrors.NewValidationError("page must be >= 1", map[string]any{"page": *page})
		}
		query.Page = *page
	}

	limit, err := parseQueryInt(c, "limit")
	if err != nil {
		return query, err
	}
	if limit != nil {
		if *limit < 1 || *limit > repository.MaxPageSize {
			return query, apperrors.NewValidationError(
				fmt.Sprintf("limit must be between 1 and %d", repository.MaxPageSize),
				map[string]any{"limit": *limit})
		}
		query.Limit = *limit
	}

	query.Normalize()
	return query, nil
}

func parseQueryInt(c *fiber.Ctx, name string) (*int, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return nil, apperrors.NewValidationError("invalid "+name, map[string]any{name: raw})
	}
	return &parsed, nil
}

func ticketResponse(row *repository.TicketRow) dto.TicketResponse {
	return dto.TicketResponse{
		ID:             row.ID,
		Key:            row.Key(),
		Subject:        row.Subject,
		Description:    row.Description,
		Type:           row.Type,
		Department:     row.Department,
		Priority:       row.Priority,
		Status:         row.Status,
		CustomerID:     row.RequesterID,
		CustomerName:   row.RequesterName,
		CustomerEmail:  row.RequesterEmail,
		AssignedTo:     row.AssigneeID,
		AssignedToName: row.AssigneeName,
		CreatedAt:      row.CreatedAt,
		UpdatedAt:      row.UpdatedAt,
	}
}
