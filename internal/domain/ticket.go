package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets. Values are the
// user-facing Portuguese labels the rest of the product uses.
type TicketStatus string

const (
	StatusOpen         TicketStatus = "Aberto"
	StatusInProgress   TicketStatus = "Em Andamento"
	StatusAwaitingUser TicketStatus = "Aguardando Usuário"
	StatusResolved     TicketStatus = "Concluído"
	StatusCancelled    TicketStatus = "Cancelado"
)

// TicketStatuses lists all valid statuses.
var TicketStatuses = []TicketStatus{
	StatusOpen,
	StatusInProgress,
	StatusAwaitingUser,
	StatusResolved,
	StatusCancelled,
}

// IsValid reports whether the status is a known value.
func (s TicketStatus) IsValid() bool {
	for _, candidate := range TicketStatuses {
		if s == candidate {
			return true
		}
	}
	return false
}

// TicketPriority enumerates urgency levels.
type TicketPriority string

const (
	PriorityLow      TicketPriority = "Baixa"
	PriorityMedium   TicketPriority = "Média"
	PriorityHigh     TicketPriority = "Alta"
	PriorityCritical TicketPriority = "Crítica"
)

// TicketPriorities lists all valid priorities, lowest first.
var TicketPriorities = []TicketPriority{
	PriorityLow,
	PriorityMedium,
	PriorityHigh,
	PriorityCritical,
}

// IsValid reports whether the priority is a known value.
func (p TicketPriority) IsValid() bool {
	for _, candidate := range TicketPriorities {
		if p == candidate {
			return true
		}
	}
	return false
}

// TicketCategory enumerates the fixed support categories.
type TicketCategory string

const (
	CategoryNetwork  TicketCategory = "Rede"
	CategorySoftware TicketCategory = "Software"
	CategoryHardware TicketCategory = "Hardware"
	CategoryAccess   TicketCategory = "Acesso"
	CategoryOther    TicketCategory = "Outros"
)

// TicketCategories lists all valid categories; the last entry is the
// catch-all used when classification cannot decide.
var TicketCategories = []TicketCategory{
	CategoryNetwork,
	CategorySoftware,
	CategoryHardware,
	CategoryAccess,
	CategoryOther,
}

// IsValid reports whether the category is a known value.
func (c TicketCategory) IsValid() bool {
	for _, candidate := range TicketCategories {
		if c == candidate {
			return true
		}
	}
	return false
}

// Ticket is the aggregate for support requests. Title, description,
// category and requester are fixed at creation; the interaction log is
// append-only and lives in its own table.
type Ticket struct {
	ID           string
	Title        string
	Description  string
	Category     TicketCategory
	Priority     TicketPriority
	Status       TicketStatus
	RequesterID  string
	TechnicianID *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TicketSnapshot is the full observable state of a ticket as delivered to
// subscribers: the row, its interaction log and the transient typing flags.
// Deleted marks the tombstone snapshot emitted when a ticket is removed.
type TicketSnapshot struct {
	Ticket
	Requester          *User
	Interactions       []TicketInteraction
	UserIsTyping       bool
	TechnicianIsTyping bool
	Deleted            bool
}

// WithoutInternal returns a copy with internal interactions stripped,
// suitable for requester-facing views.
func (s TicketSnapshot) WithoutInternal() TicketSnapshot {
	visible := make([]TicketInteraction, 0, len(s.Interactions))
	for _, interaction := range s.Interactions {
		if !interaction.IsInternal {
			visible = append(visible, interaction)
		}
	}
	s.Interactions = visible
	return s
}
