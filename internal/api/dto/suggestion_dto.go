package dto

import (
	"github.com/elotech/helpdesk/internal/domain"
)

// ClassifyRequest payload.
type ClassifyRequest struct {
	Description string `json:"description"`
}

// ClassifyResponse carries the suggested classification; applying it is
// up to the caller.
type ClassifyResponse struct {
	Category domain.TicketCategory `json:"category"`
	Priority domain.TicketPriority `json:"priority"`
}

// SuggestTechnicianRequest payload.
type SuggestTechnicianRequest struct {
	Category    domain.TicketCategory `json:"category"`
	Description string                `json:"description"`
}

// SuggestTechnicianResponse response.
type SuggestTechnicianResponse struct {
	TechnicianID string `json:"technician_id"`
	Reason       string `json:"reason"`
}
