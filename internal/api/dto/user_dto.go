package dto

import (
	"time"

	"github.com/elotech/helpdesk/internal/domain"
)

// RegisterRequest payload.
type RegisterRequest struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	Department string `json:"department"`
	Contact    string `json:"contact"`
}

// LoginRequest payload.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse carries the bearer token.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// UserResponse is the public account view; the password hash never
// leaves the service.
type UserResponse struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Email      string          `json:"email"`
	AvatarURL  string          `json:"avatar_url,omitempty"`
	Role       domain.UserRole `json:"role"`
	Department string          `json:"department,omitempty"`
	Contact    string          `json:"contact,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}

// UpdateProfileRequest payload; absent fields stay untouched.
type UpdateProfileRequest struct {
	Name       *string `json:"name"`
	AvatarURL  *string `json:"avatar_url"`
	Department *string `json:"department"`
	Contact    *string `json:"contact"`
}

// ChangePasswordRequest payload.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// PasswordResetRequest payload.
type PasswordResetRequest struct {
	Email string `json:"email"`
}

// PasswordResetConfirmRequest payload.
type PasswordResetConfirmRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

// UserResponseFrom maps a domain user.
func UserResponseFrom(user *domain.User) UserResponse {
	return UserResponse{
		ID:         user.ID,
		Name:       user.Name,
		Email:      user.Email,
		AvatarURL:  user.AvatarURL,
		Role:       user.Role,
		Department: user.Department,
		Contact:    user.Contact,
		CreatedAt:  user.CreatedAt,
	}
}
