// Package lifecycle holds the pure ticket state transition rules. It does
// no I/O; services apply its decisions against the store.
package lifecycle

import "github.com/elotech/helpdesk/internal/domain"

// IsTerminal reports whether automatic transitions stop for the status.
// Terminal tickets remain editable through explicit administrator sets.
func IsTerminal(status domain.TicketStatus) bool {
	return status == domain.StatusResolved || status == domain.StatusCancelled
}

// IsDeletable reports whether a ticket in the given status may be removed.
// Only resolved tickets can be deleted, and only by an administrator.
func IsDeletable(status domain.TicketStatus) bool {
	return status == domain.StatusResolved
}

// NextStatus computes the status after appending an interaction. The append
// itself is unconditional; only the resulting status varies:
//
//   - internal notes never move the status
//   - resolved and cancelled tickets never move automatically
//   - an admin reply puts the ticket in "Aguardando Usuário"
//   - a non-admin reply moves "Aguardando Usuário" back to "Em Andamento"
//     and leaves every other status untouched
func NextStatus(current domain.TicketStatus, author domain.InteractionAuthor, isInternal bool) domain.TicketStatus {
	if isInternal {
		return current
	}
	if IsTerminal(current) {
		return current
	}
	if author.IsAdmin() {
		return domain.StatusAwaitingUser
	}
	if current == domain.StatusAwaitingUser {
		return domain.StatusInProgress
	}
	return current
}
