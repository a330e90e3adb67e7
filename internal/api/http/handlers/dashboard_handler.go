package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/award-support/crm-service/internal/api/dto"
	"github.com/award-support/crm-service/internal/repository"
	"github.com/award-support/crm-service/internal/service"
)

// DashboardHandler serves the metrics dashboard endpoint.
type DashboardHandler struct {
	dashboard *service.DashboardService
}

// NewDashboardHandler constructs handler.
func NewDashboardHandler(dashboardService *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboardService}
}

// Metrics GET /api/dashboard/metrics.
func (h *DashboardHandler) Metrics(c *fiber.Ctx) error {
	metrics, err := h.dashboard.Metrics(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(dashboardResponse(metrics))
}

func dashboardResponse(metrics *repository.DashboardMetrics) dto.DashboardMetricsResponse {
	resp := dto.DashboardMetricsResponse{
		NewTickets:        metrics.NewToday,
		OpenTickets:       metrics.OpenTickets,
		ClosedTickets:     metrics.ClosedTickets,
		UnassignedTickets: metrics.Unassigned,
		TicketByDept:      make([]dto.DepartmentCountResponse, 0, len(metrics.ByDepartment)),
		TicketByType:      make([]dto.TypeCountResponse, 0, len(metrics.ByType)),
		TopCreators:       make([]dto.CreatorCountResponse, 0, len(metrics.TopCreators)),
	}
	for _, entry := range metrics.ByDepartment {
		resp.TicketByDept = append(resp.TicketByDept, dto.DepartmentCountResponse{
			Department: entry.Department,
			Count:      entry.Count,
		})
	}
	for _, entry := range metrics.ByType {
		resp.TicketByType = append(resp.TicketByType, dto.TypeCountResponse{
			Type:  entry.Type,
			Count: entry.Count,
		})
	}
	for _, entry := range metrics.TopCreators {
		resp.TopCreators = append(resp.TopCreators, dto.CreatorCountResponse{
			Name:           entry.Name,
			Email:          entry.Email,
			TicketsCreated: entry.Count,
		})
	}
	return resp
}
