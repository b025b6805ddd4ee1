package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/elotech/helpdesk/internal/api/dto"
	"github.com/elotech/helpdesk/internal/service"
	"github.com/elotech/helpdesk/pkg/util"
)

// SuggestionsHandler exposes the advisory model endpoints.
type SuggestionsHandler struct {
	suggestions *service.SuggestionService
}

// NewSuggestionsHandler constructs handler.
func NewSuggestionsHandler(suggestionService *service.SuggestionService) *SuggestionsHandler {
	return &SuggestionsHandler{suggestions: suggestionService}
}

// Classify POST /suggestions/classify.
func (h *SuggestionsHandler) Classify(c *fiber.Ctx) error {
	var req dto.ClassifyRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid payload", nil)
	}

	classification, err := h.suggestions.ClassifyTicket(c.UserContext(), req.Description)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.ClassifyResponse{
		Category: classification.Category,
		Priority: classification.Priority,
	}})
}

// SuggestTechnician POST /admin/suggestions/technician.
func (h *SuggestionsHandler) SuggestTechnician(c *fiber.Ctx) error {
	var req dto.SuggestTechnicianRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid payload", nil)
	}

	suggestion, err := h.suggestions.SuggestTechnician(c.UserContext(), req.Category, req.Description)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.SuggestTechnicianResponse{
		TechnicianID: suggestion.TechnicianID,
		Reason:       suggestion.Reason,
	}})
}
