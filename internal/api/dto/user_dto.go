package dto

import (
	"time"

	"github.com/Sherryli112/HatGiveMe/internal/domain"
)

// UserRegisterRequest payload for new accounts.
type UserRegisterRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// UserLoginRequest payload for login.
type UserLoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// ChangePasswordRequest payload for password changes.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=6"`
}

// UpdateProfileRequest payload for profile updates.
type UpdateProfileRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

// CreateAdminRequest payload for provisioning administrators.
type CreateAdminRequest struct {
	Name     string `json:"name" validate:"max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// UpdateUserStatusRequest payload for activating/deactivating an account.
type UpdateUserStatusRequest struct {
	Active *bool `json:"active" validate:"required"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// UserResponse is the public account representation; the password hash is
// never serialized.
type UserResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// FromUser maps a domain user to its response shape.
func FromUser(user *domain.User) UserResponse {
	return UserResponse{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Role:      string(user.Role),
		Active:    user.Active,
		CreatedAt: user.CreatedAt,
	}
}

// FromUsers maps a slice of domain users.
func FromUsers(users []domain.User) []UserResponse {
	result := make([]UserResponse, 0, len(users))
	for i := range users {
		result = append(result, FromUser(&users[i]))
	}
	return result
}
