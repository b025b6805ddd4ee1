package domain

import "time"

// Technician models a staff member tickets can be assigned to. Skills are
// drawn from the fixed category set; Workload counts currently assigned
// open tickets and is adjusted on assign/unassign, not recomputed.
type Technician struct {
	ID        string
	Name      string
	Email     string
	AvatarURL string
	Skills    []TicketCategory
	Workload  int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasSkill reports whether the technician covers the given category.
func (t *Technician) HasSkill(category TicketCategory) bool {
	for _, skill := range t.Skills {
		if skill == category {
			return true
		}
	}
	return false
}
