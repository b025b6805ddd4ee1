package domain

import "time"

// UserRole separates administrators from regular requesters. Role is fixed
// at registration; only the bootstrap admin account is created with admin.
type UserRole string

const (
	RoleAdmin UserRole = "admin"
	RoleUser  UserRole = "user"
)

// User is the domain model for accounts that file tickets. Administrators
// are users with the admin role.
type User struct {
	ID           string
	Name         string
	Email        string
	AvatarURL    string
	Role         UserRole
	Department   string
	Contact      string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}
