package events

import (
	"time"

	"github.com/elotech/helpdesk/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated          EventType = "ticket_created"
	EventTicketInteractionAdded EventType = "ticket_interaction_added"
	EventTicketStatusChanged    EventType = "ticket_status_changed"
	EventTicketPriorityChanged  EventType = "ticket_priority_changed"
	EventTicketAssigned         EventType = "ticket_assigned"
	EventTicketDeleted          EventType = "ticket_deleted"
	EventTicketTypingChanged    EventType = "ticket_typing_changed"
)

// AllTicketEvents lists every ticket event, in no particular order. The
// snapshot fanout subscribes to all of them.
var AllTicketEvents = []EventType{
	EventTicketCreated,
	EventTicketInteractionAdded,
	EventTicketStatusChanged,
	EventTicketPriorityChanged,
	EventTicketAssigned,
	EventTicketDeleted,
	EventTicketTypingChanged,
}

// Actor encapsulates actor metadata for an event.
type Actor struct {
	Kind domain.AuthorKind `json:"kind"`
	ID   string            `json:"id"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	TicketID  string    `json:"ticket_id"`
	// RequesterID scopes fanout to per-requester subscriptions.
	RequesterID string    `json:"requester_id,omitempty"`
	Actor       Actor     `json:"actor"`
	Timestamp   time.Time `json:"timestamp"`
	Payload     any       `json:"payload,omitempty"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	Title    string                `json:"title"`
	Category domain.TicketCategory `json:"category"`
	Priority domain.TicketPriority `json:"priority"`
}

// TicketInteractionAddedPayload payload.
type TicketInteractionAddedPayload struct {
	InteractionID string              `json:"interaction_id"`
	IsInternal    bool                `json:"is_internal"`
	NewStatus     domain.TicketStatus `json:"new_status"`
	BodyPreview   string              `json:"body_preview"`
}

// TicketStatusChangedPayload payload.
type TicketStatusChangedPayload struct {
	OldStatus domain.TicketStatus `json:"old_status"`
	NewStatus domain.TicketStatus `json:"new_status"`
}

// TicketPriorityChangedPayload payload.
type TicketPriorityChangedPayload struct {
	OldPriority domain.TicketPriority `json:"old_priority"`
	NewPriority domain.TicketPriority `json:"new_priority"`
}

// TicketAssignedPayload payload. TechnicianID is nil on unassign.
type TicketAssignedPayload struct {
	TechnicianID *string `json:"technician_id,omitempty"`
}

// TicketTypingChangedPayload payload.
type TicketTypingChangedPayload struct {
	Side   string `json:"side"`
	Typing bool   `json:"typing"`
}
