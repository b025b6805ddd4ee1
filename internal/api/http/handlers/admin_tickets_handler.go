package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/elotech/helpdesk/internal/api/dto"
	"github.com/elotech/helpdesk/internal/auth"
	"github.com/elotech/helpdesk/internal/presence"
	"github.com/elotech/helpdesk/internal/service"
	"github.com/elotech/helpdesk/pkg/util"
)

// AdminTicketsHandler exposes the administrative ticket surface: full
// visibility, explicit lifecycle mutations and deletion. Routes are
// guarded by the admin role middleware; handlers still pass the caller
// down so the service enforces the same checks.
type AdminTicketsHandler struct {
	tickets *service.TicketService
}

// NewAdminTicketsHandler constructs handler.
func NewAdminTicketsHandler(ticketService *service.TicketService) *AdminTicketsHandler {
	return &AdminTicketsHandler{tickets: ticketService}
}

// ListTickets GET /admin/tickets.
func (h *AdminTicketsHandler) ListTickets(c *fiber.Ctx) error {
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

// GetTicket GET /admin/tickets/:id returns the unredacted snapshot.
func (h *AdminTicketsHandler) GetTicket(c *fiber.Ctx) error {
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

// AddInteraction POST /admin/tickets/:id/interactions supports internal
// notes.
func (h *AdminTicketsHandler) AddInteraction(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return util.NewUnauthorized("authentication required")
	}
	var req dto.AddInteractionRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid payload", nil)
	}

	snapshot, err := h.tickets.AddInteraction(c.UserContext(), principal.User, c.Params("id"), req.Content, req.IsInternal)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.SnapshotResponseFrom(snapshot)})
}

// AddTechnicianInteraction POST /admin/tickets/:id/technician-interactions
// records a reply on behalf of a technician.
func (h *AdminTicketsHandler) AddTechnicianInteraction(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return util.NewUnauthorized("authentication required")
	}
	var req dto.TechnicianInteractionRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid payload", nil)
	}
	if req.TechnicianID == "" {
		return util.NewValidationError("technician_id required", nil)
	}

	snapshot, err := h.tickets.AddTechnicianInteraction(c.UserContext(), principal.User, req.TechnicianID, c.Params("id"), req.Content, req.IsInternal)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.SnapshotResponseFrom(snapshot)})
}

// SetStatus PUT /admin/tickets/:id/status.
func (h *AdminTicketsHandler) SetStatus(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return util.NewUnauthorized("authentication required")
	}
	var req dto.SetStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid payload", nil)
	}
	snapshot, err := h.tickets.SetStatus(c.UserContext(), principal.User, c.Params("id"), req.Status)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.SnapshotResponseFrom(snapshot)})
}

// SetPriority PUT /admin/tickets/:id/priority.
func (h *AdminTicketsHandler) SetPriority(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return util.NewUnauthorized("authentication required")
	}
	var req dto.SetPriorityRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid payload", nil)
	}
	snapshot, err := h.tickets.SetPriority(c.UserContext(), principal.User, c.Params("id"), req.Priority)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.SnapshotResponseFrom(snapshot)})
}

// AssignTechnician PUT /admin/tickets/:id/assignee.
func (h *AdminTicketsHandler) AssignTechnician(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return util.NewUnauthorized("authentication required")
	}
	var req dto.AssignTechnicianRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid payload", nil)
	}
	snapshot, err := h.tickets.AssignTechnician(c.UserContext(), principal.User, c.Params("id"), req.TechnicianID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.SnapshotResponseFrom(snapshot)})
}

// SetTyping PUT /admin/tickets/:id/typing sets the technician-side flag.
func (h *AdminTicketsHandler) SetTyping(c *fiber.Ctx) error {
	if principal, ok := auth.PrincipalFromContext(c); !ok || principal.User == nil {
		return util.NewUnauthorized("authentication required")
	}
	var req dto.TypingRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid payload", nil)
	}
	if err := h.tickets.SetTyping(c.UserContext(), c.Params("id"), presence.SideTechnician, req.Typing); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"typing": req.Typing}})
}

// DeleteTicket DELETE /admin/tickets/:id.
func (h *AdminTicketsHandler) DeleteTicket(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return util.NewUnauthorized("authentication required")
	}
	if err := h.tickets.DeleteTicket(c.UserContext(), principal.User, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}
