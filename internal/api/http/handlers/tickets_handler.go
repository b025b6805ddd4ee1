package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/elotech/helpdesk/internal/api/dto"
	"github.com/elotech/helpdesk/internal/auth"
	"github.com/elotech/helpdesk/internal/domain"
	"github.com/elotech/helpdesk/internal/presence"
	"github.com/elotech/helpdesk/internal/service"
	"github.com/elotech/helpdesk/pkg/util"
)

// TicketsHandler manages requester-facing ticket endpoints.
type TicketsHandler struct {
	tickets *service.TicketService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService) *TicketsHandler {
	return &TicketsHandler{tickets: ticketService}
}

// CreateTicket POST /tickets.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return util.NewUnauthorized("authentication required")
	}
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid payload", nil)
	}

	snapshot, err := h.tickets.CreateTicket(c.UserContext(), principal.User, service.TicketCreateInput{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Priority:    req.Priority,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.SnapshotResponseFrom(snapshot)})
}

// ListTickets GET /tickets.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return util.NewUnauthorized("authentication required")
	}

	tickets, err := h.tickets.ListTickets(c.UserContext(), principal.User, parseTicketListQuery(c))
	if err != nil {
		return err
	}
	items := make([]dto.TicketSummary, 0, len(tickets))
	for i := range tickets {
		items = append(items, dto.TicketSummaryFrom(&tickets[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetTicket GET /tickets/:id.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return util.NewUnauthorized("authentication required")
	}
	snapshot, err := h.tickets.GetTicket(c.UserContext(), principal.User, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.SnapshotResponseFrom(snapshot)})
}

// AddInteraction POST /tickets/:id/interactions. The requester surface
// never accepts internal notes.
func (h *TicketsHandler) AddInteraction(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return util.NewUnauthorized("authentication required")
	}
	var req dto.AddInteractionRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid payload", nil)
	}

	snapshot, err := h.tickets.AddInteraction(c.UserContext(), principal.User, c.Params("id"), req.Content, false)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.SnapshotResponseFrom(snapshot)})
}

// SetTyping PUT /tickets/:id/typing sets the requester-side flag.
func (h *TicketsHandler) SetTyping(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return util.NewUnauthorized("authentication required")
	}
	var req dto.TypingRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid payload", nil)
	}

	// Ownership gate before touching presence.
	if _, err := h.tickets.GetTicket(c.UserContext(), principal.User, c.Params("id")); err != nil {
		return err
	}
	if err := h.tickets.SetTyping(c.UserContext(), c.Params("id"), presence.SideUser, req.Typing); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"typing": req.Typing}})
}

func parseTicketListQuery(c *fiber.Ctx) service.TicketListFilter {
	filter := service.TicketListFilter{}

	if raw := c.Query("status"); raw != "" {
		for _, value := range strings.Split(raw, ",") {
			status := domain.TicketStatus(strings.TrimSpace(value))
			if status.IsValid() {
				filter.Statuses = append(filter.Statuses, status)
			}
		}
	}
	if raw := c.Query("priority"); raw != "" {
		for _, value := range strings.Split(raw, ",") {
			priority := domain.TicketPriority(strings.TrimSpace(value))
			if priority.IsValid() {
				filter.Priorities = append(filter.Priorities, priority)
			}
		}
	}
	if raw := c.Query("category"); raw != "" {
		for _, value := range strings.Split(raw, ",") {
			category := domain.TicketCategory(strings.TrimSpace(value))
			if category.IsValid() {
				filter.Categories = append(filter.Categories, category)
			}
		}
	}
	if raw := c.Query("q"); raw != "" {
		filter.SearchTerm = &raw
	}
	if raw := c.Query("created_from"); raw != "" {
		if ts, err := time.Parse(time.RFC3339, raw); err == nil {
			filter.CreatedFrom = &ts
		}
	}
	if raw := c.Query("created_to"); raw != "" {
		if ts, err := time.Parse(time.RFC3339, raw); err == nil {
			filter.CreatedTo = &ts
		}
	}

	page, _ := strconv.Atoi(c.Query("page", "1"))
	pageSize, _ := strconv.Atoi(c.Query("page_size", "50"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 200 {
		pageSize = 50
	}
	filter.Limit = pageSize
	filter.Offset = (page - 1) * pageSize
	return filter
}
