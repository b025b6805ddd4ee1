package dto

import (
	"time"

	"github.com/elotech/helpdesk/internal/domain"
)

// TechnicianRequest payload for create and update.
type TechnicianRequest struct {
	Name      string                  `json:"name"`
	Email     string                  `json:"email"`
	AvatarURL string                  `json:"avatar_url"`
	Skills    []domain.TicketCategory `json:"skills"`
}

// TechnicianResponse response.
type TechnicianResponse struct {
	ID        string                  `json:"id"`
	Name      string                  `json:"name"`
	Email     string                  `json:"email"`
	AvatarURL string                  `json:"avatar_url,omitempty"`
	Skills    []domain.TicketCategory `json:"skills"`
	Workload  int                     `json:"workload"`
	CreatedAt time.Time               `json:"created_at"`
}

// TechnicianResponseFrom maps a domain technician.
func TechnicianResponseFrom(technician *domain.Technician) TechnicianResponse {
	skills := technician.Skills
	if skills == nil {
		skills = []domain.TicketCategory{}
	}
	return TechnicianResponse{
		ID:        technician.ID,
		Name:      technician.Name,
		Email:     technician.Email,
		AvatarURL: technician.AvatarURL,
		Skills:    skills,
		Workload:  technician.Workload,
		CreatedAt: technician.CreatedAt,
	}
}
