package dto

import (
	"time"

	"github.com/bulletin-app/bulletin-api/internal/models"
)

// UserCreateRequest captures the payload for admin user creation.
// The name pattern allows letters, spaces, hyphens and apostrophes only.
type UserCreateRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=255,username_chars"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"role" validate:"required,oneof=user editor admin"`
}

// UserUpdateRequest captures the payload for admin user updates.
type UserUpdateRequest struct {
	Name  string `json:"name" validate:"required,min=2,max=255,username_chars"`
	Email string `json:"email" validate:"required,email"`
	Role  string `json:"role" validate:"required,oneof=user editor admin"`
}

// UserResponse serializes a user for API responses. Password never leaves the model.
type UserResponse struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UserListResponse wraps a paginated page of users.
type UserListResponse struct {
	Data        []UserResponse `json:"data"`
	Total       int64          `json:"total"`
	CurrentPage int            `json:"current_page"`
	LastPage    int            `json:"last_page"`
}

// NewUserResponse converts a user model into a DTO.
func NewUserResponse(user models.User) UserResponse {
	return UserResponse{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Role:      user.Role,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}
