package domain

import "time"

// GenesisContent is the body of the system-authored first interaction
// every ticket receives on creation.
const GenesisContent = "Chamado criado."

// AuthorKind tags interaction authorship as either an end-user account or
// a technician. Technicians are not accounts and never carry a role.
type AuthorKind string

const (
	AuthorKindUser       AuthorKind = "USER"
	AuthorKindTechnician AuthorKind = "TECHNICIAN"
)

// InteractionAuthor is an immutable identity snapshot taken at the moment
// of authorship. Role is set only for user authors.
type InteractionAuthor struct {
	Kind      AuthorKind
	ID        string
	Name      string
	Email     string
	AvatarURL string
	Role      *UserRole
}

// IsAdmin reports whether the author held the admin role when writing.
func (a InteractionAuthor) IsAdmin() bool {
	return a.Kind == AuthorKindUser && a.Role != nil && *a.Role == RoleAdmin
}

// UserAuthor builds an author snapshot from a user account.
func UserAuthor(u *User) InteractionAuthor {
	role := u.Role
	return InteractionAuthor{
		Kind:      AuthorKindUser,
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		AvatarURL: u.AvatarURL,
		Role:      &role,
	}
}

// TechnicianAuthor builds an author snapshot from a technician.
func TechnicianAuthor(t *Technician) InteractionAuthor {
	return InteractionAuthor{
		Kind:      AuthorKindTechnician,
		ID:        t.ID,
		Name:      t.Name,
		Email:     t.Email,
		AvatarURL: t.AvatarURL,
	}
}

// TicketInteraction is one append-only entry in a ticket's conversation
// log. Entries are never edited or removed; ordering is creation order.
type TicketInteraction struct {
	ID         string
	TicketID   string
	Author     InteractionAuthor
	Content    string
	IsInternal bool
	CreatedAt  time.Time
}
