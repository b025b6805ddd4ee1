package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/elotech/helpdesk/internal/api/dto"
	"github.com/elotech/helpdesk/internal/auth"
	"github.com/elotech/helpdesk/internal/service"
	"github.com/elotech/helpdesk/pkg/util"
)

// TechniciansHandler manages the staff roster.
type TechniciansHandler struct {
	technicians *service.TechnicianService
}

// NewTechniciansHandler constructs handler.
func NewTechniciansHandler(technicianService *service.TechnicianService) *TechniciansHandler {
	return &TechniciansHandler{technicians: technicianService}
}

// List GET /technicians.
func (h *TechniciansHandler) List(c *fiber.Ctx) error {
	technicians, err := h.technicians.List(c.UserContext())
	if err != nil {
		return err
	}
	items := make([]dto.TechnicianResponse, 0, len(technicians))
	for i := range technicians {
		items = append(items, dto.TechnicianResponseFrom(&technicians[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Get GET /technicians/:id.
func (h *TechniciansHandler) Get(c *fiber.Ctx) error {
	technician, err := h.technicians.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.TechnicianResponseFrom(technician)})
}

// Create POST /admin/technicians.
func (h *TechniciansHandler) Create(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return util.NewUnauthorized("authentication required")
	}
	var req dto.TechnicianRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid payload", nil)
	}

	technician, err := h.technicians.Create(c.UserContext(), principal.User, service.TechnicianInput{
		Name:      req.Name,
		Email:     req.Email,
		AvatarURL: req.AvatarURL,
		Skills:    req.Skills,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.TechnicianResponseFrom(technician)})
}

// Update PUT /admin/technicians/:id.
func (h *TechniciansHandler) Update(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return util.NewUnauthorized("authentication required")
	}
	var req dto.TechnicianRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid payload", nil)
	}

	technician, err := h.technicians.Update(c.UserContext(), principal.User, c.Params("id"), service.TechnicianInput{
		Name:      req.Name,
		Email:     req.Email,
		AvatarURL: req.AvatarURL,
		Skills:    req.Skills,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.TechnicianResponseFrom(technician)})
}
