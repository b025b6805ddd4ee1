package dto

import (
	"time"

	"github.com/elotech/helpdesk/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	Title       string                `json:"title"`
	Description string                `json:"description"`
	Category    domain.TicketCategory `json:"category"`
	Priority    domain.TicketPriority `json:"priority"`
}

// AddInteractionRequest payload. IsInternal is only honored on the admin
// surface.
type AddInteractionRequest struct {
	Content    string `json:"content"`
	IsInternal bool   `json:"is_internal"`
}

// TechnicianInteractionRequest records a reply on behalf of a technician.
type TechnicianInteractionRequest struct {
	TechnicianID string `json:"technician_id"`
	Content      string `json:"content"`
	IsInternal   bool   `json:"is_internal"`
}

// SetStatusRequest payload.
type SetStatusRequest struct {
	Status domain.TicketStatus `json:"status"`
}

// SetPriorityRequest payload.
type SetPriorityRequest struct {
	Priority domain.TicketPriority `json:"priority"`
}

// AssignTechnicianRequest payload. A null technician_id unassigns.
type AssignTechnicianRequest struct {
	TechnicianID *string `json:"technician_id"`
}

// TypingRequest payload.
type TypingRequest struct {
	Typing bool `json:"typing"`
}

// TicketSummary response for list views.
type TicketSummary struct {
	ID           string                `json:"id"`
	Title        string                `json:"title"`
	Category     domain.TicketCategory `json:"category"`
	Priority     domain.TicketPriority `json:"priority"`
	Status       domain.TicketStatus   `json:"status"`
	RequesterID  string                `json:"requester_id"`
	TechnicianID *string               `json:"technician_id"`
	CreatedAt    time.Time             `json:"created_at"`
	UpdatedAt    time.Time             `json:"updated_at"`
}

// AuthorResponse is the authorship snapshot embedded in interactions.
type AuthorResponse struct {
	Kind      domain.AuthorKind `json:"kind"`
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	Email     string            `json:"email"`
	AvatarURL string            `json:"avatar_url,omitempty"`
	Role      *domain.UserRole  `json:"role,omitempty"`
}

// InteractionResponse represents one log entry.
type InteractionResponse struct {
	ID         string         `json:"id"`
	Author     AuthorResponse `json:"author"`
	Content    string         `json:"content"`
	IsInternal bool           `json:"is_internal"`
	CreatedAt  time.Time      `json:"created_at"`
}

// TicketSnapshotResponse is the full observable ticket state, also used
// as the push payload on watch streams.
type TicketSnapshotResponse struct {
	ID                 string                `json:"id"`
	Title              string                `json:"title"`
	Description        string                `json:"description"`
	Category           domain.TicketCategory `json:"category"`
	Priority           domain.TicketPriority `json:"priority"`
	Status             domain.TicketStatus   `json:"status"`
	RequesterID        string                `json:"requester_id"`
	Requester          *UserResponse         `json:"requester,omitempty"`
	TechnicianID       *string               `json:"technician_id"`
	Interactions       []InteractionResponse `json:"interactions"`
	UserIsTyping       bool                  `json:"user_is_typing"`
	TechnicianIsTyping bool                  `json:"technician_is_typing"`
	Deleted            bool                  `json:"deleted,omitempty"`
	CreatedAt          time.Time             `json:"created_at"`
	UpdatedAt          time.Time             `json:"updated_at"`
}

// TicketSummaryFrom maps a domain ticket.
func TicketSummaryFrom(ticket *domain.Ticket) TicketSummary {
	return TicketSummary{
		ID:           ticket.ID,
		Title:        ticket.Title,
		Category:     ticket.Category,
		Priority:     ticket.Priority,
		Status:       ticket.Status,
		RequesterID:  ticket.RequesterID,
		TechnicianID: ticket.TechnicianID,
		CreatedAt:    ticket.CreatedAt,
		UpdatedAt:    ticket.UpdatedAt,
	}
}

// InteractionResponseFrom maps a domain interaction.
func InteractionResponseFrom(interaction *domain.TicketInteraction) InteractionResponse {
	return InteractionResponse{
		ID: interaction.ID,
		Author: AuthorResponse{
			Kind:      interaction.Author.Kind,
			ID:        interaction.Author.ID,
			Name:      interaction.Author.Name,
			Email:     interaction.Author.Email,
			AvatarURL: interaction.Author.AvatarURL,
			Role:      interaction.Author.Role,
		},
		Content:    interaction.Content,
		IsInternal: interaction.IsInternal,
		CreatedAt:  interaction.CreatedAt,
	}
}

// SnapshotResponseFrom maps a domain snapshot.
func SnapshotResponseFrom(snapshot *domain.TicketSnapshot) TicketSnapshotResponse {
	interactions := make([]InteractionResponse, 0, len(snapshot.Interactions))
	for i := range snapshot.Interactions {
		interactions = append(interactions, InteractionResponseFrom(&snapshot.Interactions[i]))
	}
	response := TicketSnapshotResponse{
		ID:                 snapshot.ID,
		Title:              snapshot.Title,
		Description:        snapshot.Description,
		Category:           snapshot.Category,
		Priority:           snapshot.Priority,
		Status:             snapshot.Status,
		RequesterID:        snapshot.RequesterID,
		TechnicianID:       snapshot.TechnicianID,
		Interactions:       interactions,
		UserIsTyping:       snapshot.UserIsTyping,
		TechnicianIsTyping: snapshot.TechnicianIsTyping,
		Deleted:            snapshot.Deleted,
		CreatedAt:          snapshot.CreatedAt,
		UpdatedAt:          snapshot.UpdatedAt,
	}
	if snapshot.Requester != nil {
		requester := UserResponseFrom(snapshot.Requester)
		response.Requester = &requester
	}
	return response
}
